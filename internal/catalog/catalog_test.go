package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wzamorag/tjAdmin-sub001/internal/doc"
	"github.com/wzamorag/tjAdmin-sub001/internal/docstore"
)

const sampleCatalog = `
ingredientes:
  - id: ingrediente:pescado
    nombre: Pescado
    unidad: kg
  - id: ingrediente:cerveza
    nombre: Cerveza
    unidad: ml

platillos:
  - id: platillo:ceviche
    nombre: Ceviche
    precio: "5.00"
    estacion: cocina
    ingredientes:
      - ingrediente: ingrediente:pescado
        cantidad: "0.25"
        unidad: kg
  - id: platillo:cerveza
    nombre: Cerveza
    precio: "2.50"
    estacion: bar
    ingredientes:
      - ingrediente: ingrediente:cerveza
        cantidad: "1"
        unidad: botella
`

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	f, err := Load(writeCatalog(t, sampleCatalog))
	require.NoError(t, err)
	require.Len(t, f.Ingredientes, 2)
	require.Len(t, f.Platillos, 2)
	assert.Equal(t, "platillo:ceviche", f.Platillos[0].ID)
	assert.Equal(t, "cocina", f.Platillos[0].Estacion)
	require.Len(t, f.Platillos[0].Ingredientes, 1)
	assert.Equal(t, "0.25", f.Platillos[0].Ingredientes[0].Cantidad)
}

func TestLoadValidation(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"bad precio", `
platillos:
  - id: platillo:x
    nombre: X
    precio: "gratis"
    estacion: bar
`},
		{"unknown estacion", `
platillos:
  - id: platillo:x
    nombre: X
    precio: "1.00"
    estacion: terraza
`},
		{"unknown ingredient", `
platillos:
  - id: platillo:x
    nombre: X
    precio: "1.00"
    estacion: bar
    ingredientes:
      - ingrediente: ingrediente:nada
        cantidad: "1"
        unidad: unidad
`},
		{"duplicate dish", `
platillos:
  - id: platillo:x
    nombre: X
    precio: "1.00"
    estacion: bar
  - id: platillo:x
    nombre: X otra vez
    precio: "2.00"
    estacion: bar
`},
		{"ingredient missing unidad", `
ingredientes:
  - id: ingrediente:x
    nombre: X
`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeCatalog(t, tc.yaml))
			require.Error(t, err)
		})
	}
}

func TestApply(t *testing.T) {
	store := docstore.NewMemoryStore()
	ctx := context.Background()

	f, err := Load(writeCatalog(t, sampleCatalog))
	require.NoError(t, err)
	require.NoError(t, Apply(ctx, store, f))

	var dish doc.Dish
	_, err = docstore.GetAs(ctx, store, "platillo:ceviche", &dish)
	require.NoError(t, err)
	assert.Equal(t, "Ceviche", dish.Nombre)
	assert.Equal(t, doc.StationKitchen, dish.Estacion)
	assert.True(t, dish.Activo)
	assert.True(t, dish.Precio.Equal(decimalFromString(t, "5.00")))

	rows, err := store.QueryByPartition(ctx, doc.PartitionRelations)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Reapplying the same catalog is idempotent: relations are recreated
	// under the same deterministic ids, not duplicated.
	require.NoError(t, Apply(ctx, store, f))
	rows, err = store.QueryByPartition(ctx, doc.PartitionRelations)
	require.NoError(t, err)
	require.Len(t, rows, 2)
}

func TestApplyUpdatesExisting(t *testing.T) {
	store := docstore.NewMemoryStore()
	ctx := context.Background()

	f, err := Load(writeCatalog(t, sampleCatalog))
	require.NoError(t, err)
	require.NoError(t, Apply(ctx, store, f))

	f.Platillos[0].Precio = "6.50"
	require.NoError(t, Apply(ctx, store, f))

	var dish doc.Dish
	_, err = docstore.GetAs(ctx, store, "platillo:ceviche", &dish)
	require.NoError(t, err)
	assert.True(t, dish.Precio.Equal(decimalFromString(t, "6.50")))
}

func TestReplaceDishIngredients(t *testing.T) {
	store := docstore.NewMemoryStore()
	ctx := context.Background()

	f, err := Load(writeCatalog(t, sampleCatalog))
	require.NoError(t, err)
	require.NoError(t, Apply(ctx, store, f))

	// Swap the ceviche recipe for a single new line; the beer's recipe
	// must be untouched.
	err = ReplaceDishIngredients(ctx, store, "platillo:ceviche", []doc.DishIngredient{
		{IngredienteID: "ingrediente:pescado", Cantidad: decimalFromString(t, "0.30"), Unidad: "kg"},
	})
	require.NoError(t, err)

	rows, err := store.QueryByPartition(ctx, doc.PartitionRelations)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	var kept, replaced int
	for _, row := range rows {
		var rel doc.DishIngredient
		require.NoError(t, unmarshalRow(row, &rel))
		switch rel.PlatilloID {
		case "platillo:cerveza":
			kept++
		case "platillo:ceviche":
			replaced++
			assert.True(t, rel.Cantidad.Equal(decimalFromString(t, "0.30")))
		}
	}
	assert.Equal(t, 1, kept)
	assert.Equal(t, 1, replaced)

	// Empty replacement clears the recipe.
	require.NoError(t, ReplaceDishIngredients(ctx, store, "platillo:ceviche", nil))
	rows, err = store.QueryByPartition(ctx, doc.PartitionRelations)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
