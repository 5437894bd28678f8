package handlers

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Query features on the tour list endpoint: field filters with gte/gt/lte/lt
// brackets, comma-separated sort and field selection, page/limit pagination.

var filterableFields = map[string]bool{
	"duration":       true,
	"maxGroupSize":   true,
	"difficulty":     true,
	"ratingAverage":  true,
	"ratingQuantity": true,
	"price":          true,
	"slug":           true,
}

var comparisonOps = map[string]string{
	"gte": "$gte",
	"gt":  "$gt",
	"lte": "$lte",
	"lt":  "$lt",
}

func buildTourQuery(values url.Values) (bson.M, *options.FindOptions, error) {
	filter := bson.M{}

	for rawKey, rawValues := range values {
		if len(rawValues) == 0 || rawValues[0] == "" {
			continue
		}
		value := rawValues[0]

		field, op := splitFilterKey(rawKey)
		if !filterableFields[field] {
			continue
		}

		if op == "" {
			filter[field] = coerceFilterValue(value)
			continue
		}

		mongoOp, ok := comparisonOps[op]
		if !ok {
			return nil, nil, fmt.Errorf("unsupported filter operator: %s", op)
		}

		sub, _ := filter[field].(bson.M)
		if sub == nil {
			sub = bson.M{}
		}
		sub[mongoOp] = coerceFilterValue(value)
		filter[field] = sub
	}

	findOptions := options.Find()

	if sort := strings.TrimSpace(values.Get("sort")); sort != "" {
		findOptions.SetSort(parseSortParam(sort))
	} else {
		findOptions.SetSort(bson.D{{Key: "createdAt", Value: -1}})
	}

	if fields := strings.TrimSpace(values.Get("fields")); fields != "" {
		projection := bson.M{}
		for _, field := range strings.Split(fields, ",") {
			if field = strings.TrimSpace(field); field != "" {
				projection[field] = 1
			}
		}
		findOptions.SetProjection(projection)
	}

	pageStr := values.Get("page")
	limitStr := values.Get("limit")
	if pageStr != "" || limitStr != "" {
		page, limit, err := parsePaginationParams(pageStr, limitStr)
		if err != nil {
			return nil, nil, err
		}
		findOptions.SetSkip((page - 1) * limit).SetLimit(limit)
	}

	return filter, findOptions, nil
}

// splitFilterKey breaks "price[lte]" into ("price", "lte"); a bare key has
// an empty operator.
func splitFilterKey(key string) (field, op string) {
	open := strings.Index(key, "[")
	if open == -1 || !strings.HasSuffix(key, "]") {
		return key, ""
	}
	return key[:open], key[open+1 : len(key)-1]
}

func coerceFilterValue(value string) interface{} {
	if number, err := strconv.ParseFloat(value, 64); err == nil {
		return number
	}
	return value
}

func parseSortParam(sort string) bson.D {
	sortDoc := bson.D{}
	for _, field := range strings.Split(sort, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		order := 1
		if strings.HasPrefix(field, "-") {
			order = -1
			field = field[1:]
		}
		sortDoc = append(sortDoc, bson.E{Key: field, Value: order})
	}
	return sortDoc
}

// maxPageLimit caps how many documents a single page may request.
const maxPageLimit = int64(500)

func parsePaginationParams(pageStr, limitStr string) (int64, int64, error) {
	page := int64(1)
	limit := int64(100)

	if pageStr != "" {
		p, err := strconv.ParseInt(pageStr, 10, 64)
		if err != nil || p < 1 {
			return 0, 0, fmt.Errorf("invalid page parameter")
		}
		page = p
	}

	if limitStr != "" {
		l, err := strconv.ParseInt(limitStr, 10, 64)
		if err != nil || l < 1 {
			return 0, 0, fmt.Errorf("invalid limit parameter")
		}
		if l > maxPageLimit {
			l = maxPageLimit
		}
		limit = l
	}

	return page, limit, nil
}
