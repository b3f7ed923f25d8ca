// Package catalog loads the menu definition (dishes, ingredients and the
// recipe lines joining them) from a YAML file and seeds it into the
// document store. Recipes are the input to consumption resolution: how
// much of each ingredient one unit of a dish uses.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/wzamorag/tjAdmin-sub001/internal/doc"
	"github.com/wzamorag/tjAdmin-sub001/internal/docstore"
)

// File is the on-disk catalog format.
type File struct {
	Ingredientes []IngredientSpec `yaml:"ingredientes"`
	Platillos    []DishSpec       `yaml:"platillos"`
}

// IngredientSpec declares one stocked raw material.
type IngredientSpec struct {
	ID     string `yaml:"id"`
	Nombre string `yaml:"nombre"`
	Unidad string `yaml:"unidad"`
}

// DishSpec declares one menu entry and its recipe.
type DishSpec struct {
	ID           string       `yaml:"id"`
	Nombre       string       `yaml:"nombre"`
	Precio       string       `yaml:"precio"`
	Estacion     string       `yaml:"estacion"`
	Ingredientes []RecipeLine `yaml:"ingredientes,omitempty"`
}

// RecipeLine is one dish→ingredient requirement per unit of dish.
type RecipeLine struct {
	Ingrediente string `yaml:"ingrediente"`
	Cantidad    string `yaml:"cantidad"`
	Unidad      string `yaml:"unidad"`
}

// Load parses the catalog file at path.
func Load(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) validate() error {
	ingredients := make(map[string]bool, len(f.Ingredientes))
	for _, ing := range f.Ingredientes {
		if ing.ID == "" || ing.Nombre == "" || ing.Unidad == "" {
			return fmt.Errorf("catalog: ingredient %q missing id, nombre or unidad", ing.ID)
		}
		if ingredients[ing.ID] {
			return fmt.Errorf("catalog: duplicate ingredient %q", ing.ID)
		}
		ingredients[ing.ID] = true
	}
	dishes := make(map[string]bool, len(f.Platillos))
	for _, d := range f.Platillos {
		if d.ID == "" || d.Nombre == "" {
			return fmt.Errorf("catalog: dish %q missing id or nombre", d.ID)
		}
		if dishes[d.ID] {
			return fmt.Errorf("catalog: duplicate dish %q", d.ID)
		}
		dishes[d.ID] = true
		if _, err := decimal.NewFromString(d.Precio); err != nil {
			return fmt.Errorf("catalog: dish %q has bad precio %q: %w", d.ID, d.Precio, err)
		}
		switch doc.Station(d.Estacion) {
		case doc.StationBar, doc.StationKitchen:
		default:
			return fmt.Errorf("catalog: dish %q has unknown estacion %q", d.ID, d.Estacion)
		}
		for _, line := range d.Ingredientes {
			if !ingredients[line.Ingrediente] {
				return fmt.Errorf("catalog: dish %q references unknown ingredient %q", d.ID, line.Ingrediente)
			}
			if _, err := decimal.NewFromString(line.Cantidad); err != nil {
				return fmt.Errorf("catalog: dish %q ingredient %q has bad cantidad %q: %w",
					d.ID, line.Ingrediente, line.Cantidad, err)
			}
		}
	}
	return nil
}

// Apply seeds the catalog into the store. Dishes and ingredients are
// upserted; recipe relations are recreated wholesale per dish (existing
// lines deleted, new lines written), matching how catalog edits behave.
func Apply(ctx context.Context, store docstore.Store, f *File) error {
	for _, spec := range f.Ingredientes {
		ing := doc.Ingredient{
			ID:     spec.ID,
			Type:   doc.TypeIngredient,
			Nombre: spec.Nombre,
			Unidad: spec.Unidad,
		}
		if err := upsert(ctx, store, ing.ID, doc.PartitionIngredients, ing); err != nil {
			return fmt.Errorf("seed ingredient %q: %w", spec.ID, err)
		}
	}
	for _, spec := range f.Platillos {
		precio, err := decimal.NewFromString(spec.Precio)
		if err != nil {
			return fmt.Errorf("seed dish %q: %w", spec.ID, err)
		}
		dish := doc.Dish{
			ID:       spec.ID,
			Type:     doc.TypeDish,
			Nombre:   spec.Nombre,
			Precio:   precio,
			Estacion: doc.Station(spec.Estacion),
			Activo:   true,
		}
		if err := upsert(ctx, store, dish.ID, doc.PartitionDishes, dish); err != nil {
			return fmt.Errorf("seed dish %q: %w", spec.ID, err)
		}

		lines := make([]doc.DishIngredient, 0, len(spec.Ingredientes))
		for _, line := range spec.Ingredientes {
			qty, err := decimal.NewFromString(line.Cantidad)
			if err != nil {
				return fmt.Errorf("seed dish %q: %w", spec.ID, err)
			}
			lines = append(lines, doc.DishIngredient{
				Type:          doc.TypeRelation,
				PlatilloID:    spec.ID,
				IngredienteID: line.Ingrediente,
				Cantidad:      qty,
				Unidad:        line.Unidad,
			})
		}
		if err := ReplaceDishIngredients(ctx, store, spec.ID, lines); err != nil {
			return fmt.Errorf("seed dish %q relations: %w", spec.ID, err)
		}
	}
	return nil
}

// ReplaceDishIngredients swaps a dish's recipe wholesale: every existing
// relation for the dish is deleted and the given lines are written fresh.
// Relation ids are deterministic (platillo:ingrediente:n) so reseeding the
// same catalog is idempotent.
func ReplaceDishIngredients(ctx context.Context, store docstore.Store, dishID string, lines []doc.DishIngredient) error {
	rows, err := store.QueryByPartition(ctx, doc.PartitionRelations)
	if err != nil {
		return fmt.Errorf("load relations: %w", err)
	}
	for _, row := range rows {
		var rel doc.DishIngredient
		if err := unmarshalRow(row, &rel); err != nil {
			return err
		}
		if rel.PlatilloID != dishID {
			continue
		}
		if err := store.Delete(ctx, row.ID, row.Rev); err != nil {
			return fmt.Errorf("delete relation %q: %w", row.ID, err)
		}
	}

	for i := range lines {
		rel := lines[i]
		rel.Type = doc.TypeRelation
		rel.PlatilloID = dishID
		rel.ID = fmt.Sprintf("rel:%s:%s:%d", dishID, rel.IngredienteID, i)
		if _, err := store.Save(ctx, rel.ID, doc.PartitionRelations, rel, docstore.NoRevision); err != nil {
			return fmt.Errorf("write relation %q: %w", rel.ID, err)
		}
	}
	return nil
}

func upsert(ctx context.Context, store docstore.Store, id, partition string, value any) error {
	_, rev, err := store.Get(ctx, id)
	switch {
	case docstore.IsNotFound(err):
		rev = docstore.NoRevision
	case err != nil:
		return err
	}
	_, err = store.Save(ctx, id, partition, value, rev)
	return err
}

func unmarshalRow(row docstore.Row, out any) error {
	if err := json.Unmarshal(row.Doc, out); err != nil {
		return fmt.Errorf("decode document %q: %w", row.ID, err)
	}
	return nil
}
