// Package query turns list query strings into MongoDB find options:
// filtering with comparison operators, sorting, field selection and
// pagination.
package query

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"natours-api/internal/apperror"
	"natours-api/internal/models"
	"natours-api/internal/repository"
)

const (
	DefaultSort  = "-createdAt"
	DefaultLimit = 100
	MaxLimit     = 1000
)

var (
	reservedParams = map[string]bool{"page": true, "sort": true, "limit": true, "fields": true}
	operators      = map[string]string{"gte": "$gte", "gt": "$gt", "lte": "$lte", "lt": "$lt", "ne": "$ne"}
	keyPattern     = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)(?:\[([a-z]+)\])?$`)
)

// Features is a parsed list query.
type Features struct {
	Filter     bson.M
	Sort       bson.D
	Fields     []string
	Excluded   []string
	Projection bson.M
	Page       int64
	Limit      int64
}

// Parse reads query parameters against the given field kinds. Unknown
// fields and unknown operators are ignored.
func Parse(values url.Values, fields map[string]models.FieldKind) (*Features, error) {
	f := &Features{Filter: bson.M{}, Page: 1, Limit: DefaultLimit}

	if err := f.parseFilter(values, fields); err != nil {
		return nil, err
	}

	sortParam := values.Get("sort")
	if sortParam == "" {
		sortParam = DefaultSort
	}
	f.Sort = parseSort(sortParam, fields)

	if err := f.parseFields(values.Get("fields"), fields); err != nil {
		return nil, err
	}

	if p, err := strconv.ParseInt(values.Get("page"), 10, 64); err == nil && p > 0 {
		f.Page = p
	}
	if l, err := strconv.ParseInt(values.Get("limit"), 10, 64); err == nil && l > 0 {
		f.Limit = min(l, MaxLimit)
	}

	return f, nil
}

// Options resolves the features into repository list options.
func (f *Features) Options() repository.ListOptions {
	return repository.ListOptions{
		Filter:     f.Filter,
		Sort:       f.Sort,
		Projection: f.Projection,
		Skip:       (f.Page - 1) * f.Limit,
		Limit:      f.Limit,
	}
}

func (f *Features) parseFilter(values url.Values, fields map[string]models.FieldKind) error {
	for key, vals := range values {
		if reservedParams[key] || len(vals) == 0 {
			continue
		}

		m := keyPattern.FindStringSubmatch(key)
		if m == nil {
			continue
		}
		field, op := m[1], m[2]

		kind, known := fields[field]
		if !known {
			continue
		}

		if op == "" {
			cond, err := equality(field, kind, vals)
			if err != nil {
				return err
			}
			f.Filter[field] = mergeCondition(f.Filter[field], cond)
			continue
		}

		mongoOp, ok := operators[op]
		if !ok {
			continue
		}
		v, err := cast(field, kind, vals[len(vals)-1])
		if err != nil {
			return err
		}
		f.Filter[field] = mergeCondition(f.Filter[field], bson.M{mongoOp: v})
	}
	return nil
}

func equality(field string, kind models.FieldKind, vals []string) (any, error) {
	if len(vals) == 1 {
		return cast(field, kind, vals[0])
	}
	in := make(bson.A, 0, len(vals))
	for _, raw := range vals {
		v, err := cast(field, kind, raw)
		if err != nil {
			return nil, err
		}
		in = append(in, v)
	}
	return bson.M{"$in": in}, nil
}

// mergeCondition combines "price=500" style equality with operator maps
// for the same field.
func mergeCondition(existing, next any) any {
	if existing == nil {
		return next
	}
	em, eok := existing.(bson.M)
	nm, nok := next.(bson.M)
	if eok && nok {
		for k, v := range nm {
			em[k] = v
		}
		return em
	}
	if nok {
		nm["$eq"] = existing
		return nm
	}
	if eok {
		em["$eq"] = next
		return em
	}
	return next
}

func cast(field string, kind models.FieldKind, raw string) (any, error) {
	bad := func() error {
		return apperror.BadRequest(fmt.Sprintf("Invalid %s: %s", field, raw))
	}

	switch kind {
	case models.KindNumber:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, bad()
		}
		return v, nil
	case models.KindInt:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, bad()
		}
		return v, nil
	case models.KindBool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, bad()
		}
		return v, nil
	case models.KindDate:
		if v, err := time.Parse(time.RFC3339, raw); err == nil {
			return v, nil
		}
		if v, err := time.Parse(time.DateOnly, raw); err == nil {
			return v, nil
		}
		return nil, bad()
	}

	if field == "_id" {
		oid, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return nil, bad()
		}
		return oid, nil
	}
	return raw, nil
}

func parseSort(param string, fields map[string]models.FieldKind) bson.D {
	sort := bson.D{}
	seen := map[string]bool{}
	for _, part := range strings.Split(param, ",") {
		part = strings.TrimSpace(part)
		dir := 1
		if strings.HasPrefix(part, "-") {
			dir = -1
			part = part[1:]
		}
		if _, ok := fields[part]; !ok || seen[part] {
			continue
		}
		seen[part] = true
		sort = append(sort, bson.E{Key: part, Value: dir})
	}
	return sort
}

func (f *Features) parseFields(param string, fields map[string]models.FieldKind) error {
	if param == "" {
		return nil
	}

	projection := bson.M{}
	include, exclude := 0, 0
	for _, part := range strings.Split(param, ",") {
		part = strings.TrimSpace(part)
		value := 1
		if strings.HasPrefix(part, "-") {
			value = 0
			part = part[1:]
		}
		if _, ok := fields[part]; !ok {
			continue
		}
		if value == 1 {
			include++
			f.Fields = append(f.Fields, part)
		} else {
			exclude++
			f.Excluded = append(f.Excluded, part)
		}
		projection[part] = value
	}

	if include > 0 && exclude > 0 {
		return apperror.BadRequest("Cannot mix included and excluded fields")
	}
	if len(projection) > 0 {
		f.Projection = projection
	}
	return nil
}
