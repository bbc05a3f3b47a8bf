package downloader

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/sync/errgroup"
)

// Task pairs a source URL with the local path it should land at.
type Task struct {
	URL  string
	Path string
}

// ExecuteBatch downloads every task concurrently and succeeds only when
// all of them do. The first failure is returned wrapped with its URL;
// files already written by sibling tasks are left in place. An empty
// batch succeeds immediately.
func ExecuteBatch(ctx context.Context, client *http.Client, tasks []Task) error {
	if len(tasks) == 0 {
		return nil
	}

	var g errgroup.Group
	for _, task := range tasks {
		task := task
		g.Go(func() error {
			d := NewBasicDownloadable(client, task.URL, "")
			if err := d.Download(ctx, task.Path, nil); err != nil {
				return fmt.Errorf("downloading %s: %w", task.URL, err)
			}
			return nil
		})
	}
	return g.Wait()
}
