package pos

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/wzamorag/tjAdmin-sub001/internal/auth"
	"github.com/wzamorag/tjAdmin-sub001/internal/doc"
	"github.com/wzamorag/tjAdmin-sub001/internal/docstore"
)

// Test catalog: a kitchen dish with plain-unit ingredients and a bar
// dish whose recipe uses a convertible coarse unit.
const (
	dishCeviche = "platillo:ceviche"
	dishCerveza = "platillo:cerveza"

	ingPescado = "ingrediente:pescado"
	ingLimon   = "ingrediente:limon"
	ingCerveza = "ingrediente:cerveza"
)

var testClock = time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)

type fixture struct {
	store docstore.Store
	eng   *Engine
	now   *time.Time
}

func newFixture(t *testing.T, user auth.User, store docstore.Store) *fixture {
	t.Helper()
	if store == nil {
		store = docstore.NewMemoryStore()
	}
	now := testClock
	f := &fixture{store: store, now: &now}
	f.eng = New(store, auth.Static{User: user},
		WithClock(func() time.Time { return *f.now }),
		WithLocation(time.UTC),
	)
	return f
}

// asRole returns a second engine over the same store acting as another
// user, the way a different terminal would.
func (f *fixture) asRole(user auth.User) *Engine {
	return New(f.store, auth.Static{User: user},
		WithClock(func() time.Time { return *f.now }),
		WithLocation(time.UTC),
	)
}

func mesero() auth.User      { return auth.User{ID: "mesero-1", Role: auth.RoleServer} }
func admin() auth.User       { return auth.User{ID: "admin-1", Role: auth.RoleAdmin} }
func operaciones() auth.User { return auth.User{ID: "ops-1", Role: auth.RoleOperations} }
func cocinero() auth.User    { return auth.User{ID: "cocina-1", Role: auth.RoleKitchen} }

func seedCatalog(t *testing.T, store docstore.Store) {
	t.Helper()
	ctx := context.Background()

	ingredients := []doc.Ingredient{
		{ID: ingPescado, Type: doc.TypeIngredient, Nombre: "Pescado", Unidad: "kg"},
		{ID: ingLimon, Type: doc.TypeIngredient, Nombre: "Limon", Unidad: "unidad"},
		{ID: ingCerveza, Type: doc.TypeIngredient, Nombre: "Cerveza", Unidad: "ml"},
	}
	for _, ing := range ingredients {
		_, err := store.Save(ctx, ing.ID, doc.PartitionIngredients, ing, docstore.NoRevision)
		require.NoError(t, err)
	}

	dishes := []doc.Dish{
		{ID: dishCeviche, Type: doc.TypeDish, Nombre: "Ceviche", Precio: dec("5.00"), Estacion: doc.StationKitchen, Activo: true},
		{ID: dishCerveza, Type: doc.TypeDish, Nombre: "Cerveza", Precio: dec("8.00"), Estacion: doc.StationBar, Activo: true},
	}
	for _, d := range dishes {
		_, err := store.Save(ctx, d.ID, doc.PartitionDishes, d, docstore.NoRevision)
		require.NoError(t, err)
	}

	relations := []doc.DishIngredient{
		{ID: "rel:ceviche:pescado", Type: doc.TypeRelation, PlatilloID: dishCeviche, IngredienteID: ingPescado, Cantidad: dec("0.25"), Unidad: "kg"},
		{ID: "rel:ceviche:limon", Type: doc.TypeRelation, PlatilloID: dishCeviche, IngredienteID: ingLimon, Cantidad: dec("3"), Unidad: "unidad"},
		// One beer consumes one bottle, expanded to 750 ml by the
		// conversion table.
		{ID: "rel:cerveza:cerveza", Type: doc.TypeRelation, PlatilloID: dishCerveza, IngredienteID: ingCerveza, Cantidad: dec("1"), Unidad: "botella"},
	}
	for _, rel := range relations {
		_, err := store.Save(ctx, rel.ID, doc.PartitionRelations, rel, docstore.NoRevision)
		require.NoError(t, err)
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// hookStore wraps a Store and runs a callback before every Save, letting
// tests interleave out-of-band writes the way a racing terminal would.
type hookStore struct {
	docstore.Store
	beforeSave func(id string)
}

func (h *hookStore) Save(ctx context.Context, id, partition string, d any, rev docstore.Revision) (docstore.Revision, error) {
	if h.beforeSave != nil {
		h.beforeSave(id)
	}
	return h.Store.Save(ctx, id, partition, d, rev)
}
