// Package query turns accommodation search parameters into a typed filter.
// Every accepted parameter is declared once in a schema (name, column,
// operator, value kind); the same filter renders a parameterized SQL
// predicate for the repository and matches accommodations in process.
package query

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/iliyamo/vacation-rental/internal/daterange"
	"github.com/iliyamo/vacation-rental/internal/model"
)

// ErrInvalidFilter is returned for parameters whose value does not fit the
// declared kind.
var ErrInvalidFilter = errors.New("invalid filter")

type Op string

const (
	OpEq    Op = "eq"
	OpIn    Op = "in"
	OpGte   Op = "gte"
	OpLte   Op = "lte"
	OpAnyOf Op = "anyOf"
)

type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindList
)

// Field declares one filterable query parameter. Column is a trusted SQL
// expression; user input only ever reaches the query as a bound argument.
type Field struct {
	Param  string
	Column string
	Op     Op
	Kind   Kind
	Lower  bool

	text   func(*model.Accommodation) string
	number func(*model.Accommodation) float64
	list   func(*model.Accommodation) []string
}

func textField(param, column string, op Op, kind Kind, get func(*model.Accommodation) string) Field {
	return Field{Param: param, Column: column, Op: op, Kind: kind, text: get}
}

func numberField(param, column string, op Op, get func(*model.Accommodation) int) Field {
	return Field{Param: param, Column: column, Op: op, Kind: KindNumber,
		number: func(a *model.Accommodation) float64 { return float64(get(a)) }}
}

func amenityField(param string) Field {
	return Field{
		Param:  param,
		Column: fmt.Sprintf("JSON_EXTRACT(doc, '$.%s.en')", param),
		Op:     OpAnyOf,
		Kind:   KindList,
		list:   func(a *model.Accommodation) []string { return a.AmenityGroups()[param].En },
	}
}

var (
	propertyTypeEn = func(a *model.Accommodation) string { return a.PropertyType.En }
	city           = func(a *model.Accommodation) string { return a.LocationDetails.City }
	country        = func(a *model.Accommodation) string { return a.LocationDetails.Country }
	address        = func(a *model.Accommodation) string { return a.Location.Address }
	priceMonThus   = func(a *model.Accommodation) float64 { return a.PriceMonThus }
)

// Schema lists the parameters accepted by the multi-filter search.
var Schema = []Field{
	textField("propertyType", "property_type", OpIn, KindList, propertyTypeEn),
	{Param: "city", Column: "city", Op: OpEq, Kind: KindString, Lower: true, text: city},
	textField("country", "country", OpEq, KindString, country),
	textField("location", "address", OpEq, KindString, address),
	{Param: "minPrice", Column: "price_mon_thus", Op: OpGte, Kind: KindNumber, number: priceMonThus},
	{Param: "maxPrice", Column: "price_mon_thus", Op: OpLte, Kind: KindNumber, number: priceMonThus},
	textField("pet", "pet", OpEq, KindString, func(a *model.Accommodation) string { return a.Pet.En }),
	textField("smoking", "smoking", OpEq, KindString, func(a *model.Accommodation) string { return a.Smoking.En }),
	textField("rentalform", "rentalform", OpEq, KindString, func(a *model.Accommodation) string { return a.RentalForm.En }),
	textField("partyOrganizing", "party_organizing", OpEq, KindString, func(a *model.Accommodation) string { return a.PartyOrganizing.En }),
	numberField("person", "person", OpGte, func(a *model.Accommodation) int { return a.Person }),
	numberField("beds", "beds", OpLte, func(a *model.Accommodation) int { return a.Beds }),
	numberField("bedroomCount", "bedroom", OpGte, func(a *model.Accommodation) int { return a.Bedroom }),
	numberField("bathroomCount", "bathroom", OpGte, func(a *model.Accommodation) int { return a.Bathroom }),
	amenityField("services"),
	amenityField("bathroomAmenities"),
	amenityField("kitchenDiningAmenities"),
	amenityField("heatingCoolingAmenities"),
	amenityField("safetyAmenities"),
	amenityField("wellnessAmenities"),
	amenityField("outdoorAmenities"),
	amenityField("parkingFacilities"),
	amenityField("checkIn"),
	amenityField("meals"),
}

// SimpleSchema backs the category/city/country/location search, whose
// conditions are OR-ed together.
var SimpleSchema = []Field{
	textField("category", "property_type", OpEq, KindString, propertyTypeEn),
	{Param: "city", Column: "city", Op: OpEq, Kind: KindString, Lower: true, text: city},
	textField("country", "country", OpEq, KindString, country),
	textField("location", "address", OpEq, KindString, address),
}

// Condition is one bound parameter.
type Condition struct {
	Field Field
	Str   string
	Num   float64
	List  []string
}

// Filter is a parsed search request. Available, when set, restricts
// results to accommodations with no booked entry overlapping the range.
type Filter struct {
	Conditions []Condition
	Any        bool
	Available  *daterange.Range
}

// Parse builds an AND filter from the multi-filter search parameters.
// Unknown parameters are ignored.
func Parse(values url.Values) (Filter, error) {
	f, err := parse(values, Schema)
	if err != nil {
		return Filter{}, err
	}
	start, end := strings.TrimSpace(values.Get("startDate")), strings.TrimSpace(values.Get("endDate"))
	if start != "" && end != "" {
		s, err := daterange.Parse(start)
		if err != nil {
			return Filter{}, err
		}
		e, err := daterange.Parse(end)
		if err != nil {
			return Filter{}, err
		}
		if e.Before(s) {
			return Filter{}, fmt.Errorf("%w: endDate before startDate", ErrInvalidFilter)
		}
		f.Available = &daterange.Range{Start: s, End: e}
	}
	return f, nil
}

// ParseSimple builds an OR filter over SimpleSchema.
func ParseSimple(values url.Values) (Filter, error) {
	f, err := parse(values, SimpleSchema)
	f.Any = true
	return f, err
}

func parse(values url.Values, schema []Field) (Filter, error) {
	var f Filter
	for _, field := range schema {
		raw := strings.TrimSpace(values.Get(field.Param))
		if raw == "" {
			continue
		}
		c := Condition{Field: field}
		switch field.Kind {
		case KindString:
			c.Str = raw
			if field.Lower {
				c.Str = strings.ToLower(raw)
			}
		case KindNumber:
			n, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return Filter{}, fmt.Errorf("%w: %s must be a number", ErrInvalidFilter, field.Param)
			}
			c.Num = n
		case KindList:
			c.List = ParseList(raw)
			if len(c.List) == 0 {
				continue
			}
		}
		f.Conditions = append(f.Conditions, c)
	}
	return f, nil
}

// ParseList accepts a JSON array of strings or a comma separated list,
// optionally wrapped in brackets.
func ParseList(raw string) []string {
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err == nil {
		return compact(out)
	}
	raw = strings.NewReplacer("[", "", "]", "").Replace(raw)
	return compact(strings.Split(raw, ","))
}

func compact(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// IsEmpty reports whether the filter would match everything.
func (f Filter) IsEmpty() bool { return len(f.Conditions) == 0 && f.Available == nil }

// SQL renders the column conditions as a WHERE body with positional
// arguments. The availability range is not part of it.
func (f Filter) SQL() (string, []any) {
	if len(f.Conditions) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(f.Conditions))
	var args []any
	for _, c := range f.Conditions {
		col := c.Field.Column
		switch c.Field.Op {
		case OpEq:
			parts = append(parts, col+" = ?")
			args = append(args, c.Str)
		case OpGte:
			parts = append(parts, col+" >= ?")
			args = append(args, c.Num)
		case OpLte:
			parts = append(parts, col+" <= ?")
			args = append(args, c.Num)
		case OpIn:
			ph := strings.TrimSuffix(strings.Repeat("?,", len(c.List)), ",")
			parts = append(parts, col+" IN ("+ph+")")
			for _, v := range c.List {
				args = append(args, v)
			}
		case OpAnyOf:
			b, _ := json.Marshal(c.List)
			parts = append(parts, "JSON_OVERLAPS("+col+", CAST(? AS JSON))")
			args = append(args, string(b))
		}
	}
	sep := " AND "
	if f.Any {
		sep = " OR "
	}
	return "(" + strings.Join(parts, sep) + ")", args
}

// Match evaluates the whole filter, availability included, against a.
func (f Filter) Match(a *model.Accommodation) bool {
	if f.Available != nil && !Available(a.OccupancyCalendar, *f.Available) {
		return false
	}
	if len(f.Conditions) == 0 {
		return true
	}
	for _, c := range f.Conditions {
		ok := c.match(a)
		if f.Any && ok {
			return true
		}
		if !f.Any && !ok {
			return false
		}
	}
	return !f.Any
}

func (c Condition) match(a *model.Accommodation) bool {
	switch c.Field.Op {
	case OpEq:
		v := c.Field.text(a)
		if c.Field.Lower {
			v = strings.ToLower(v)
		}
		return v == c.Str
	case OpGte:
		return c.Field.number(a) >= c.Num
	case OpLte:
		return c.Field.number(a) <= c.Num
	case OpIn:
		v := c.Field.text(a)
		for _, want := range c.List {
			if v == want {
				return true
			}
		}
	case OpAnyOf:
		for _, have := range c.Field.list(a) {
			for _, want := range c.List {
				if have == want {
					return true
				}
			}
		}
	}
	return false
}

// Available reports whether no booked entry overlaps r. Entries with any
// other status never make an accommodation unavailable for search.
func Available(entries []model.OccupancyEntry, r daterange.Range) bool {
	for _, e := range entries {
		if e.Status != model.StatusBooked {
			continue
		}
		if daterange.Overlaps(daterange.Range{Start: e.StartDate, End: e.EndDate}, r) {
			return false
		}
	}
	return true
}
