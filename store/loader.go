package store

import (
	"encoding/json"
	"errors"

	"github.com/kubex/rubix-dirsync/store/datastore"
	"github.com/kubex/rubix-dirsync/store/jsonfile"
	"github.com/kubex/rubix-dirsync/store/sql"
)

func Load(jsonBytes []byte) (Provider, error) {

	loader := struct {
		Provider      string
		Configuration *json.RawMessage
	}{}

	err := json.Unmarshal(jsonBytes, &loader)
	if err != nil {
		return nil, err
	}
	if loader.Configuration == nil {
		raw := json.RawMessage("{}")
		loader.Configuration = &raw
	}

	switch loader.Provider {
	case sql.ProviderKey:
		return sql.FromJson(*loader.Configuration)
	case jsonfile.ProviderKey:
		return jsonfile.FromJson(*loader.Configuration)
	case datastore.ProviderKey:
		return datastore.FromJson(*loader.Configuration)
	}

	return nil, errors.New("unable to load storage provider '" + loader.Provider + "'")
}
