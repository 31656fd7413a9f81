package workers

import (
	"context"
	"log"
)

type ImageStore interface {
	Remove(ctx context.Context, uri string) error
}

type CleanupJob struct {
	ImageURI string
}

// ImageCleanupWorker removes image files whose observation was deleted
// or whose photo was replaced. Removal is best-effort and off the
// request path; an orphaned file is a cosmetic leak, not a data bug.
type ImageCleanupWorker struct {
	images ImageStore
	jobs   chan CleanupJob
}

func NewImageCleanupWorker(images ImageStore) *ImageCleanupWorker {
	return &ImageCleanupWorker{
		images: images,
		jobs:   make(chan CleanupJob, 100),
	}
}

func (w *ImageCleanupWorker) Start(ctx context.Context) {
	go func() {
		log.Println("Image Cleanup Worker started in background...")
		for {
			select {
			case job := <-w.jobs:
				w.processJob(ctx, job)
			case <-ctx.Done():
				log.Println("Image Cleanup Worker shutting down...")
				return
			}
		}
	}()
}

func (w *ImageCleanupWorker) Enqueue(imageURI string) {
	if imageURI == "" {
		return
	}
	select {
	case w.jobs <- CleanupJob{ImageURI: imageURI}:
	default:
		log.Printf("Image Cleanup Worker queue full! Dropping job for %s", imageURI)
	}
}

func (w *ImageCleanupWorker) processJob(ctx context.Context, job CleanupJob) {
	if err := w.images.Remove(ctx, job.ImageURI); err != nil {
		log.Printf("Image Cleanup Worker: failed to remove %s: %v", job.ImageURI, err)
		return
	}
	log.Printf("Image Cleanup Worker: removed %s", job.ImageURI)
}
