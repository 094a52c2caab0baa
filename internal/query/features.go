// Package query translates list-endpoint query strings into MongoDB find
// arguments: filtering with gte/gt/lte/lt operator suffixes, comma
// separated sort and field selection, and page/limit pagination.
package query

import (
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	DefaultLimit = 100
	MaxLimit     = 500
)

// reserved parameters are consumed by sorting/pagination/projection and
// never end up in the filter.
var reserved = map[string]bool{
	"page":   true,
	"sort":   true,
	"limit":  true,
	"fields": true,
}

var operators = map[string]string{
	"gte": "$gte",
	"gt":  "$gt",
	"lte": "$lte",
	"lt":  "$lt",
}

// Features holds the parsed find arguments for a list endpoint.
type Features struct {
	Filter     bson.M
	Sort       bson.D
	Projection bson.D
	Skip       int64
	Limit      int64
}

// Parse builds Features from the request's query parameters, as returned
// by fiber's Queries(). Unknown parameters become equality filters; a
// key like price[gte] becomes a {$gte: value} range filter.
func Parse(params map[string]string) Features {
	f := Features{Filter: bson.M{}, Limit: DefaultLimit}

	for key, raw := range params {
		if reserved[key] {
			continue
		}
		field, op := splitOperator(key)
		if field == "" {
			continue
		}
		value := coerce(raw)
		if op == "" {
			f.Filter[field] = value
			continue
		}
		rangeFilter, ok := f.Filter[field].(bson.M)
		if !ok {
			rangeFilter = bson.M{}
			f.Filter[field] = rangeFilter
		}
		rangeFilter[op] = value
	}

	f.Sort = parseSort(params["sort"])
	f.Projection = parseFields(params["fields"])

	if limit, err := strconv.ParseInt(params["limit"], 10, 64); err == nil && limit > 0 {
		if limit > MaxLimit {
			limit = MaxLimit
		}
		f.Limit = limit
	}
	if page, err := strconv.ParseInt(params["page"], 10, 64); err == nil && page > 1 {
		f.Skip = (page - 1) * f.Limit
	}

	return f
}

// FindOptions converts the parsed features into driver find options.
func (f Features) FindOptions() *options.FindOptionsBuilder {
	opts := options.Find().SetSkip(f.Skip).SetLimit(f.Limit)
	if len(f.Sort) > 0 {
		opts.SetSort(f.Sort)
	}
	if len(f.Projection) > 0 {
		opts.SetProjection(f.Projection)
	}
	return opts
}

// splitOperator splits "price[gte]" into ("price", "$gte"). A key without
// a recognized suffix is returned unchanged with an empty operator.
func splitOperator(key string) (string, string) {
	open := strings.IndexByte(key, '[')
	if open <= 0 || !strings.HasSuffix(key, "]") {
		return key, ""
	}
	field := key[:open]
	name := key[open+1 : len(key)-1]
	op, ok := operators[name]
	if !ok {
		return field, ""
	}
	return field, op
}

// parseSort turns "-price,rating" into a bson.D sort document, keeping
// the field order of the parameter. A "-" prefix sorts descending.
func parseSort(raw string) bson.D {
	if raw == "" {
		return bson.D{{Key: "created_at", Value: -1}}
	}
	var sort bson.D
	for _, field := range strings.Split(raw, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		direction := 1
		if strings.HasPrefix(field, "-") {
			direction = -1
			field = field[1:]
		}
		sort = append(sort, bson.E{Key: field, Value: direction})
	}
	return sort
}

// parseFields turns "price,address" into an inclusion projection.
func parseFields(raw string) bson.D {
	if raw == "" {
		return nil
	}
	var projection bson.D
	for _, field := range strings.Split(raw, ",") {
		field = strings.TrimSpace(field)
		if field == "" || strings.HasPrefix(field, "-") {
			continue
		}
		projection = append(projection, bson.E{Key: field, Value: 1})
	}
	return projection
}

// coerce converts numeric and boolean literals so range filters compare
// numbers instead of strings.
func coerce(raw string) interface{} {
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return n
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}
