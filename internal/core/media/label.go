package media

import (
	"context"
	"fmt"

	"aria-downloader/internal/shared"
)

// PendingLabel resolves to a record label's catalog, shaped exactly like
// an artist discography.
type PendingLabel struct {
	deps *Deps
	id   string
}

// NewPendingLabel builds a pending label for the given service ID.
func NewPendingLabel(deps *Deps, id string) *PendingLabel {
	return &PendingLabel{deps: deps, id: id}
}

func (p *PendingLabel) ID() string { return "label " + p.id }

func (p *PendingLabel) Resolve(ctx context.Context) (Media, error) {
	label, err := p.deps.Client.GetLabel(ctx, p.id)
	if err != nil {
		return nil, fmt.Errorf("failed to get label info: %w", err)
	}
	shared.ColorInfo.Printf("🏷️  Found label: %s (%d albums)\n", label.Name, len(label.AlbumIDs))
	return &AlbumList{deps: p.deps, name: label.Name, albumIDs: label.AlbumIDs}, nil
}
