package countries

import (
	"github.com/loadkit/loadable"
	"github.com/loadkit/loadable/loadcore"
)

const (
	listKey      = "countries"
	detailPrefix = "country"
)

// NewRepository binds a byte store to the countries domain.
func NewRepository(store loadcore.Store) *loadable.Repository[Country, Details] {
	return loadable.NewRepository[Country, Details](store, loadable.RepositoryConfig[Country]{
		ListKey:      listKey,
		DetailPrefix: detailPrefix,
		SearchText:   SearchText,
	})
}

// NewLoader composes a store and a remote client into the country loader.
//
// Example:
//
//	store := loadable.NewMemoryStore(ctx)
//	loader := countries.NewLoader(store, countries.NewClient(""))
func NewLoader(store loadcore.Store, client *Client, opts ...loadable.Option) *loadable.Orchestrator[Country, Details] {
	return loadable.New[Country, Details](NewRepository(store), client, opts...)
}
