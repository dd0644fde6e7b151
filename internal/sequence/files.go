package sequence

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// ApplyAndSync runs a mutation through Apply and then renames the frame
// files inside dir so names stay aligned with the persisted order.
func (s *Store) ApplyAndSync(ctx context.Context, dir string, mutate func(*Sequence) error) ([]Frame, error) {
	ctx = ensureContext(ctx)
	before, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	seq := New(before)
	if err := mutate(seq); err != nil {
		return nil, err
	}
	updated := seq.Frames()
	if err := SyncFiles(dir, before, updated); err != nil {
		return nil, err
	}
	if err := s.rewrite(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// SyncFiles reconciles the frame files in dir from the before ordering to
// the after ordering. Deleted frames' files are removed before survivors
// are renamed into place; renames go through a temporary directory in two
// phases so position swaps never collide on a shared name.
func SyncFiles(dir string, before, after []Frame) error {
	oldNames := make(map[int64]string, len(before))
	for _, frame := range before {
		oldNames[frame.ID] = frame.Name
	}
	kept := make(map[int64]struct{}, len(after))
	for _, frame := range after {
		kept[frame.ID] = struct{}{}
	}

	// Deleted files go first: renumbering moves a survivor onto the old
	// name of a deleted frame, so removing after placement would delete
	// the survivor's file.
	for id, name := range oldNames {
		if _, ok := kept[id]; ok {
			continue
		}
		if err := os.Remove(filepath.Join(dir, name)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", name, err)
		}
	}

	type move struct {
		from string
		to   string
	}
	var moves []move
	for _, frame := range after {
		oldName, ok := oldNames[frame.ID]
		if !ok || oldName == frame.Name {
			continue
		}
		moves = append(moves, move{from: oldName, to: frame.Name})
	}

	if len(moves) > 0 {
		staging, err := os.MkdirTemp(dir, ".reorder-*")
		if err != nil {
			return fmt.Errorf("create staging dir: %w", err)
		}
		defer func() { _ = os.RemoveAll(staging) }()

		for _, m := range moves {
			if err := os.Rename(filepath.Join(dir, m.from), filepath.Join(staging, m.to)); err != nil {
				return fmt.Errorf("stage %s: %w", m.from, err)
			}
		}
		for _, m := range moves {
			if err := os.Rename(filepath.Join(staging, m.to), filepath.Join(dir, m.to)); err != nil {
				return fmt.Errorf("place %s: %w", m.to, err)
			}
		}
	}
	return nil
}
