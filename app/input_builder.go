package app

import (
	"stikpet/adapters/stats/catalogue"
	"stikpet/internal/errors"
	"stikpet/ports"
)

// ColumnSelection names the data file columns that feed a procedure.
type ColumnSelection struct {
	Scale   string   `json:"scale,omitempty"`
	Scale2  string   `json:"scale2,omitempty"`
	Field   string   `json:"field,omitempty"`
	Field2  string   `json:"field2,omitempty"`
	Groups  string   `json:"groups,omitempty"`
	Matrix  []string `json:"matrix,omitempty"` // One column per repeated condition
	Levels  []string `json:"levels,omitempty"`
	Levels2 []string `json:"levels2,omitempty"`
}

// BuildInput reads the selected columns into a procedure input.
func BuildInput(r ports.DataReader, sel ColumnSelection, params catalogue.Params) (catalogue.Input, error) {
	in := catalogue.Input{Levels: sel.Levels, Levels2: sel.Levels2, Params: params}

	numeric := func(name string, dst *catalogue.Values) error {
		if name == "" {
			return nil
		}
		v, err := r.Numeric(name)
		if err != nil {
			return errors.FromDomain(err)
		}
		*dst = v
		return nil
	}
	text := func(name string, dst *[]string) error {
		if name == "" {
			return nil
		}
		v, err := r.Column(name)
		if err != nil {
			return errors.FromDomain(err)
		}
		*dst = v
		return nil
	}

	if err := numeric(sel.Scale, &in.Scale); err != nil {
		return in, err
	}
	if err := numeric(sel.Scale2, &in.Scale2); err != nil {
		return in, err
	}
	if err := text(sel.Field, &in.Field); err != nil {
		return in, err
	}
	if err := text(sel.Field2, &in.Field2); err != nil {
		return in, err
	}
	if err := text(sel.Groups, &in.Groups); err != nil {
		return in, err
	}

	if len(sel.Matrix) > 0 {
		cols := make([]catalogue.Values, len(sel.Matrix))
		for j, name := range sel.Matrix {
			if err := numeric(name, &cols[j]); err != nil {
				return in, err
			}
		}
		in.Matrix = make([]catalogue.Values, r.Rows())
		for i := range in.Matrix {
			row := make(catalogue.Values, len(cols))
			for j := range cols {
				row[j] = cols[j][i]
			}
			in.Matrix[i] = row
		}
	}
	return in, nil
}
