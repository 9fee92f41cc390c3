package ingest

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/market-basket/internal/common"
	"github.com/Veraticus/market-basket/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLayouts = []string{"2006-01-02 15:04:05", "01/02/2006 15:04"}

const bakeryLog = "Transaction,Item,Date_Time,period_day\n" +
	"1,Bread,2016-10-30 09:58:11,morning\n" +
	"1,Scandinavian,2016-10-30 09:58:11,morning\n" +
	"1,SCANDINAVIAN ,2016-10-30 09:58:11,morning\n" +
	"2,Hot chocolate;Jam,2016-10-30 10:05:34,morning\n" +
	"3,NONE,2016-10-30 10:07:57,morning\n" +
	"3,Coffee\u00a0,2016-10-30 10:07:57,morning\n" +
	"4,Muffin,not-a-date,morning\n" +
	"5, Pastry ,10/31/2016 14:20,afternoon\n" +
	",Cookies,2016-10-31 15:00:00,afternoon\n"

func TestReadCSV(t *testing.T) {
	result, err := ReadCSV(context.Background(), strings.NewReader(bakeryLog), Options{
		Source:      "bakery.csv",
		TimeLayouts: testLayouts,
	})
	require.NoError(t, err)

	assert.Equal(t, Report{
		Rows:          9,
		Kept:          5,
		Malformed:     1,
		Placeholders:  1,
		BadTimestamps: 1,
		Duplicates:    1,
	}, result.Report)

	var labels []string
	for _, li := range result.Items {
		labels = append(labels, li.Item)
	}
	assert.Equal(t, []string{"bread", "scandinavian", "hot chocolate,jam", "coffee", "pastry"}, labels)

	first := result.Items[0]
	assert.Equal(t, "1", first.TransactionID)
	assert.Equal(t, "2016-10-30", first.Date)
	assert.Equal(t, "October", first.Month)
	assert.Equal(t, "Sunday", first.Weekday)
	assert.Equal(t, "9-10", first.HourBucket)
	assert.Equal(t, "bakery.csv", first.Source)

	last := result.Items[4]
	assert.Equal(t, "Monday", last.Weekday)
	assert.Equal(t, "14-15", last.HourBucket)
	assert.Equal(t, time.Date(2016, 10, 31, 14, 20, 0, 0, time.UTC), last.OccurredAt)
}

func TestReadCSV_MissingColumns(t *testing.T) {
	_, err := ReadCSV(context.Background(), strings.NewReader("Transaction,Product\n1,bread\n"), Options{
		TimeLayouts: testLayouts,
	})
	require.ErrorIs(t, err, common.ErrMissingColumn)
	assert.Contains(t, err.Error(), "item")
	assert.Contains(t, err.Error(), "date_time")

	_, err = ReadCSV(context.Background(), strings.NewReader(""), Options{TimeLayouts: testLayouts})
	assert.ErrorIs(t, err, common.ErrMissingColumn)
}

func TestReadCSV_ByteOrderMark(t *testing.T) {
	input := "\ufeffTransaction,Item,date_time\n7,tea,2017-01-01 08:00:00\n"
	result, err := ReadCSV(context.Background(), strings.NewReader(input), Options{TimeLayouts: testLayouts})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "7", result.Items[0].TransactionID)
}

func TestReadCSV_RequiresLayouts(t *testing.T) {
	_, err := ReadCSV(context.Background(), strings.NewReader(bakeryLog), Options{})
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestReadCSV_Location(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	input := "Transaction,Item,date_time\n1,tea,2017-01-01 23:30:00\n"

	result, err := ReadCSV(context.Background(), strings.NewReader(input), Options{
		TimeLayouts: testLayouts,
		Location:    loc,
	})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "2017-01-01", result.Items[0].Date)
	assert.Equal(t, "23-24", result.Items[0].HourBucket)
}

func TestReadCSV_Cancelled(t *testing.T) {
	var b strings.Builder
	b.WriteString("Transaction,Item,date_time\n")
	for i := 0; i < ctxCheckInterval; i++ {
		b.WriteString("1,tea,2017-01-01 08:00:00\n")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ReadCSV(ctx, strings.NewReader(b.String()), Options{TimeLayouts: testLayouts})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCleanItem(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		keep bool
	}{
		{raw: "Bread", want: "bread", keep: true},
		{raw: "  Hot Chocolate ", want: "hot chocolate", keep: true},
		{raw: "Jam;Toast", want: "jam,toast", keep: true},
		{raw: "Tea Cake", want: "tea cake", keep: true},
		{raw: "\uff34ea", want: "tea", keep: true},
		{raw: "NaN"},
		{raw: "None."},
		{raw: "   "},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := CleanItem(tt.raw)
			assert.Equal(t, tt.keep, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGroupBaskets(t *testing.T) {
	at := time.Date(2016, 10, 30, 9, 0, 0, 0, time.UTC)
	items := []model.LineItem{
		{TransactionID: "2", Item: "jam", OccurredAt: at},
		{TransactionID: "1", Item: "tea", OccurredAt: at.Add(time.Hour)},
		{TransactionID: "2", Item: "bread", OccurredAt: at.Add(time.Minute)},
		{TransactionID: "2", Item: "jam", OccurredAt: at.Add(24 * time.Hour)},
	}

	baskets := GroupBaskets(items)
	require.Len(t, baskets, 2)
	assert.Equal(t, model.Basket{TransactionID: "2", Date: at, Items: []string{"bread", "jam"}}, baskets[0])
	assert.Equal(t, []string{"tea"}, baskets[1].Items)

	assert.Empty(t, GroupBaskets(nil))
}

func TestGroupBasketsScopesIDsToSource(t *testing.T) {
	at := time.Date(2016, 10, 30, 9, 0, 0, 0, time.UTC)
	items := []model.LineItem{
		{TransactionID: "1", Item: "coffee", OccurredAt: at, Source: "north.csv"},
		{TransactionID: "1", Item: "bread", OccurredAt: at, Source: "north.csv"},
		{TransactionID: "1", Item: "coffee", OccurredAt: at, Source: "south.csv"},
		{TransactionID: "1", Item: "tea", OccurredAt: at, Source: "south.csv"},
	}

	baskets := GroupBaskets(items)
	require.Len(t, baskets, 2)
	assert.Equal(t, "north.csv", baskets[0].Source)
	assert.Equal(t, []string{"bread", "coffee"}, baskets[0].Items)
	assert.Equal(t, "south.csv", baskets[1].Source)
	assert.Equal(t, []string{"coffee", "tea"}, baskets[1].Items)
}
