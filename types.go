package forgen

import (
	"github.com/jward/forgen/internal/document"
	"github.com/jward/forgen/internal/identity"
	"github.com/jward/forgen/internal/sema"
	"github.com/jward/forgen/internal/store"
	"github.com/jward/forgen/internal/walk"
)

// Public type aliases for the internal types that appear in the Engine API.
// External consumers use these names; no conversion is needed.

type Document = document.Document
type Model = sema.Model
type Crate = sema.Crate
type StableID = identity.StableID
type ItemInfo = walk.ItemInfo
type Filter = walk.Filter
type IDStore = store.DataStore
