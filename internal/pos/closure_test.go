package pos

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wzamorag/tjAdmin-sub001/internal/auth"
	"github.com/wzamorag/tjAdmin-sub001/internal/doc"
)

// payOrder runs one beer order through the full lifecycle, paying it at
// paidAt, and returns its order number.
func payOrder(t *testing.T, f *fixture, mesa string, paidAt time.Time) int {
	t.Helper()
	ctx := context.Background()

	order, err := f.eng.CreateOrder(ctx, mesa, "carlos", []ItemSpec{
		{PlatilloID: dishCerveza, Cantidad: 1},
	})
	require.NoError(t, err)
	_, _, err = f.eng.SendToBilling(ctx, order.ID)
	require.NoError(t, err)
	*f.now = paidAt
	_, err = f.eng.MarkPaid(ctx, order.ID, doc.PaymentInfo{Metodo: "efectivo"})
	require.NoError(t, err)
	return order.Numero
}

func TestGenerateClosure(t *testing.T) {
	f := newFixture(t, admin(), nil)
	seedCatalog(t, f.store)
	ctx := context.Background()

	day := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	n1 := payOrder(t, f, "1", day)
	n2 := payOrder(t, f, "2", day.Add(2*time.Hour))

	// Paid the next day: out of scope.
	payOrder(t, f, "3", day.AddDate(0, 0, 1))

	// Billed but never paid: out of scope.
	order, err := f.eng.CreateOrder(ctx, "4", "ana", []ItemSpec{
		{PlatilloID: dishCerveza, Cantidad: 1},
	})
	require.NoError(t, err)
	_, _, err = f.eng.SendToBilling(ctx, order.ID)
	require.NoError(t, err)

	closure, err := f.eng.GenerateClosure(ctx, "2024-06-01")
	require.NoError(t, err)
	require.Equal(t, 1, closure.Numero)
	require.Equal(t, "2024-06-01", closure.Fecha)
	require.Equal(t, 2, closure.NumTickets)
	require.Equal(t, []int{n1, n2}, closure.Ordenes)
	requireDec(t, "16.00", closure.Total)
	require.Equal(t, "admin-1", closure.Actor)
	require.False(t, closure.Empty())

	// The closure is persisted and queryable by date.
	same, err := f.eng.ClosuresForDate(ctx, "2024-06-01")
	require.NoError(t, err)
	require.Len(t, same, 1)
	require.Equal(t, closure.ID, same[0].ID)
}

func TestGenerateClosureVenueLocalDay(t *testing.T) {
	venue := time.FixedZone("CST", -6*3600)
	f := newFixture(t, admin(), nil)
	f.eng = New(f.store, auth.Static{User: admin()},
		WithClock(func() time.Time { return *f.now }),
		WithLocation(venue),
	)
	seedCatalog(t, f.store)
	ctx := context.Background()

	// 2024-06-02 03:00 UTC is still 2024-06-01 21:00 at the venue.
	lateNight := time.Date(2024, 6, 2, 3, 0, 0, 0, time.UTC)
	n := payOrder(t, f, "1", lateNight)

	closure, err := f.eng.GenerateClosure(ctx, "2024-06-01")
	require.NoError(t, err)
	require.Equal(t, []int{n}, closure.Ordenes)

	next, err := f.eng.GenerateClosure(ctx, "2024-06-02")
	require.NoError(t, err)
	require.True(t, next.Empty())
}

func TestGenerateClosureRepeatedDate(t *testing.T) {
	f := newFixture(t, admin(), nil)
	seedCatalog(t, f.store)
	ctx := context.Background()

	day := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	n := payOrder(t, f, "1", day)

	first, err := f.eng.GenerateClosure(ctx, "2024-06-01")
	require.NoError(t, err)
	second, err := f.eng.GenerateClosure(ctx, "2024-06-01")
	require.NoError(t, err)

	// Re-running a date is allowed: a new number over the same tickets.
	assert.Equal(t, first.Numero+1, second.Numero)
	assert.Equal(t, []int{n}, second.Ordenes)
	assert.True(t, first.Total.Equal(second.Total))

	both, err := f.eng.ClosuresForDate(ctx, "2024-06-01")
	require.NoError(t, err)
	require.Len(t, both, 2)
}

func TestGenerateClosureEmptyDay(t *testing.T) {
	f := newFixture(t, admin(), nil)
	ctx := context.Background()

	closure, err := f.eng.GenerateClosure(ctx, "2024-06-01")
	require.NoError(t, err)
	require.True(t, closure.Empty())
	require.Equal(t, 0, closure.NumTickets)
	requireDec(t, "0", closure.Total)
	require.Empty(t, closure.Ordenes)

	all, err := f.eng.Closures(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestGenerateClosureBadDate(t *testing.T) {
	f := newFixture(t, admin(), nil)
	ctx := context.Background()

	_, err := f.eng.GenerateClosure(ctx, "01/06/2024")
	require.True(t, IsValidation(err), "bad date: %v", err)
}
