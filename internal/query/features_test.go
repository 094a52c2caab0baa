package query

import (
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestParse_EqualityFilter(t *testing.T) {
	f := Parse(map[string]string{"numberOfRooms": "3", "address.city": "Haifa"})

	if got := f.Filter["numberOfRooms"]; got != float64(3) {
		t.Fatalf("numberOfRooms = %v (%T), want 3 as float64", got, got)
	}
	if got := f.Filter["address.city"]; got != "Haifa" {
		t.Fatalf("address.city = %v, want Haifa", got)
	}
}

func TestParse_RangeOperators(t *testing.T) {
	f := Parse(map[string]string{"price[gte]": "1000", "price[lte]": "2500"})

	rangeFilter, ok := f.Filter["price"].(bson.M)
	if !ok {
		t.Fatalf("price filter is %T, want bson.M", f.Filter["price"])
	}
	if rangeFilter["$gte"] != float64(1000) || rangeFilter["$lte"] != float64(2500) {
		t.Fatalf("unexpected range filter: %v", rangeFilter)
	}
}

func TestParse_UnknownOperatorSuffixIgnored(t *testing.T) {
	f := Parse(map[string]string{"price[regex]": "x"})

	// Unknown suffix degrades to a plain equality on the field.
	if got := f.Filter["price"]; got != "x" {
		t.Fatalf("price = %v, want plain value x", got)
	}
}

func TestParse_ReservedParamsStayOutOfFilter(t *testing.T) {
	f := Parse(map[string]string{"page": "2", "sort": "price", "limit": "10", "fields": "price"})

	if len(f.Filter) != 0 {
		t.Fatalf("reserved params leaked into filter: %v", f.Filter)
	}
}

func TestParse_SortDirections(t *testing.T) {
	f := Parse(map[string]string{"sort": "-price,rating"})

	want := bson.D{{Key: "price", Value: -1}, {Key: "rating", Value: 1}}
	if !reflect.DeepEqual(f.Sort, want) {
		t.Fatalf("sort = %v, want %v", f.Sort, want)
	}
}

func TestParse_DefaultSortIsNewestFirst(t *testing.T) {
	f := Parse(map[string]string{})

	want := bson.D{{Key: "created_at", Value: -1}}
	if !reflect.DeepEqual(f.Sort, want) {
		t.Fatalf("default sort = %v, want %v", f.Sort, want)
	}
}

func TestParse_FieldProjection(t *testing.T) {
	f := Parse(map[string]string{"fields": "price, address"})

	want := bson.D{{Key: "price", Value: 1}, {Key: "address", Value: 1}}
	if !reflect.DeepEqual(f.Projection, want) {
		t.Fatalf("projection = %v, want %v", f.Projection, want)
	}
}

func TestParse_Pagination(t *testing.T) {
	f := Parse(map[string]string{"page": "3", "limit": "20"})

	if f.Limit != 20 {
		t.Fatalf("limit = %d, want 20", f.Limit)
	}
	if f.Skip != 40 {
		t.Fatalf("skip = %d, want 40", f.Skip)
	}
}

func TestParse_LimitClampedToMax(t *testing.T) {
	f := Parse(map[string]string{"limit": "100000"})

	if f.Limit != MaxLimit {
		t.Fatalf("limit = %d, want %d", f.Limit, MaxLimit)
	}
}

func TestParse_BadPaginationFallsBack(t *testing.T) {
	f := Parse(map[string]string{"page": "abc", "limit": "-5"})

	if f.Limit != DefaultLimit {
		t.Fatalf("limit = %d, want default %d", f.Limit, DefaultLimit)
	}
	if f.Skip != 0 {
		t.Fatalf("skip = %d, want 0", f.Skip)
	}
}

func TestCoerce(t *testing.T) {
	if got := coerce("2.5"); got != float64(2.5) {
		t.Fatalf("coerce(2.5) = %v", got)
	}
	if got := coerce("true"); got != true {
		t.Fatalf("coerce(true) = %v", got)
	}
	if got := coerce("Tel Aviv"); got != "Tel Aviv" {
		t.Fatalf("coerce(Tel Aviv) = %v", got)
	}
}
