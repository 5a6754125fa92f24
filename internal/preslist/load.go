package preslist

import (
	"context"
	"errors"
	"fmt"

	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/preslist/internal/docstore"
	"golang.org/x/sync/errgroup"
)

// Load reads every needed collection from store and sorts it: people and
// contacts by position, everything else by _id. Collections the store does
// not know are treated as empty.
func Load(ctx context.Context, store docstore.Store, logger log.Logger) (*Snapshot, error) {
	lists := make([][]docstore.Document, len(NeededCollections))

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range NeededCollections {
		g.Go(func() error {
			docs, err := store.List(gctx, name)
			if errors.Is(err, docstore.ErrUnknownCollection) {
				logger.Warn(gctx, "collection not found, treating as empty", "collection", name)
				return nil
			}
			if err != nil {
				return fmt.Errorf("load %s: %w", name, err)
			}
			lists[i] = docs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byName := make(map[string][]docstore.Document, len(lists))
	for i, name := range NeededCollections {
		byName[name] = lists[i]
	}
	snap := &Snapshot{
		People:        byName[CollectionPeople],
		Contacts:      byName[CollectionContacts],
		Groups:        byName[CollectionGroups],
		Institutions:  byName[CollectionInstitutions],
		Grants:        byName[CollectionGrants],
		Presentations: byName[CollectionPresentations],
	}
	SortByPosition(snap.People)
	SortByPosition(snap.Contacts)
	docstore.SortByID(snap.Groups)
	docstore.SortByID(snap.Institutions)
	docstore.SortByID(snap.Grants)
	docstore.SortByID(snap.Presentations)

	logger.Info(ctx, "snapshot loaded",
		"people", len(snap.People),
		"contacts", len(snap.Contacts),
		"groups", len(snap.Groups),
		"institutions", len(snap.Institutions),
		"presentations", len(snap.Presentations),
	)
	return snap, nil
}
