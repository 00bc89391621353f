package classifier

import "strconv"

// Report is a Result flattened to strings for JSON and msgpack consumers.
type Report struct {
	Status            string        `json:"status" msgpack:"status"`
	TypeMask          string        `json:"type_mask" msgpack:"type_mask"`
	Operation         string        `json:"operation" msgpack:"operation"`
	Canonical         string        `json:"canonical" msgpack:"canonical"`
	Fingerprint       string        `json:"fingerprint" msgpack:"fingerprint"`
	Databases         []string      `json:"databases,omitempty" msgpack:"databases,omitempty"`
	Tables            []string      `json:"tables,omitempty" msgpack:"tables,omitempty"`
	Fields            []FieldReport `json:"fields,omitempty" msgpack:"fields,omitempty"`
	Functions         []FuncReport  `json:"functions,omitempty" msgpack:"functions,omitempty"`
	CreatedTable      string        `json:"created_table,omitempty" msgpack:"created_table,omitempty"`
	PrepareName       string        `json:"prepare_name,omitempty" msgpack:"prepare_name,omitempty"`
	PreparableSQL     string        `json:"preparable_sql,omitempty" msgpack:"preparable_sql,omitempty"`
	Kill              *KillReport   `json:"kill,omitempty" msgpack:"kill,omitempty"`
	RelatesToPrevious bool          `json:"relates_to_previous,omitempty" msgpack:"relates_to_previous,omitempty"`
	SQLMode           string        `json:"sql_mode" msgpack:"sql_mode"`
}

type FieldReport struct {
	Name    string `json:"name" msgpack:"name"`
	Context string `json:"context,omitempty" msgpack:"context,omitempty"`
}

type FuncReport struct {
	Name   string   `json:"name" msgpack:"name"`
	Fields []string `json:"fields,omitempty" msgpack:"fields,omitempty"`
}

type KillReport struct {
	Target string `json:"target" msgpack:"target"`
	Type   string `json:"type" msgpack:"type"`
	User   bool   `json:"user,omitempty" msgpack:"user,omitempty"`
	Soft   bool   `json:"soft,omitempty" msgpack:"soft,omitempty"`
}

// Describe renders r as a Report.
func Describe(r *Result) Report {
	rep := Report{
		Status:            r.Status.String(),
		TypeMask:          r.TypeMask.String(),
		Operation:         r.Operation.String(),
		Canonical:         r.Canonical,
		Fingerprint:       strconv.FormatUint(r.Fingerprint, 16),
		Databases:         r.DatabaseNames,
		CreatedTable:      r.CreatedTableName,
		PrepareName:       r.PrepareName,
		RelatesToPrevious: r.RelatesToPrevious,
		SQLMode:           r.Mode.String(),
	}
	for _, t := range r.TableNames {
		rep.Tables = append(rep.Tables, t.String())
	}
	for _, f := range r.FieldInfos {
		rep.Fields = append(rep.Fields, FieldReport{Name: f.String(), Context: f.Context.String()})
	}
	for _, fn := range r.FunctionInfos {
		fr := FuncReport{Name: fn.Name}
		for _, f := range r.Fields(fn) {
			fr.Fields = append(fr.Fields, f.String())
		}
		rep.Functions = append(rep.Functions, fr)
	}
	if r.PreparableStmt != nil {
		rep.PreparableSQL = r.PreparableStmt.SQL()
	}
	if k := r.KillInfo; k != nil {
		rep.Kill = &KillReport{Target: k.Target, Type: k.Type.String(), User: k.User, Soft: k.Soft}
	}
	return rep
}
