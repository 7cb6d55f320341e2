package resource

type FieldInfo struct {
	Name          string   `json:"name"`
	Label         string   `json:"label"`
	Kind          Kind     `json:"kind"`
	Required      bool     `json:"required"`
	Default       any      `json:"default,omitempty"`
	Helper        string   `json:"helper,omitempty"`
	Options       []Option `json:"options,omitempty"`
	Relation      string   `json:"relation,omitempty"`
	MaxSizeKB     int64    `json:"max_size_kb,omitempty"`
	AcceptedTypes []string `json:"accepted_types,omitempty"`
}

type ColumnInfo struct {
	Name       string `json:"name"`
	Label      string `json:"label"`
	Searchable bool   `json:"searchable"`
	Sortable   bool   `json:"sortable"`
	Limit      int    `json:"limit,omitempty"`
	DateTime   bool   `json:"datetime,omitempty"`
	Image      bool   `json:"image,omitempty"`
	Toggle     bool   `json:"toggle,omitempty"`
	Visible    bool   `json:"visible"`
}

type FilterInfo struct {
	Name   string   `json:"name"`
	Label  string   `json:"label"`
	Fields []string `json:"fields,omitempty"`
}

// SchemaInfo is what a client needs to render the resource's form and table.
type SchemaInfo struct {
	Name    string       `json:"name"`
	Fields  []FieldInfo  `json:"fields"`
	Columns []ColumnInfo `json:"columns"`
	Filters []FilterInfo `json:"filters"`
}

func (d *Descriptor[T]) Describe() SchemaInfo {
	info := SchemaInfo{
		Name:    d.name,
		Fields:  make([]FieldInfo, 0, len(d.Fields)),
		Columns: make([]ColumnInfo, 0, len(d.Columns)),
		Filters: make([]FilterInfo, 0, len(d.Filters)),
	}

	for _, f := range d.Fields {
		fi := FieldInfo{
			Name:          f.Name,
			Label:         f.Label,
			Kind:          f.Kind,
			Required:      f.Required,
			Default:       f.Default,
			Helper:        f.Helper,
			Relation:      f.Relation,
			MaxSizeKB:     f.MaxSizeKB,
			AcceptedTypes: f.AcceptedTypes,
		}
		if f.Options != nil {
			fi.Options = f.Options()
		}
		info.Fields = append(info.Fields, fi)
	}

	for _, c := range d.Columns {
		info.Columns = append(info.Columns, ColumnInfo{
			Name:       c.Name,
			Label:      c.Label,
			Searchable: c.Searchable,
			Sortable:   c.Sortable,
			Limit:      c.Limit,
			DateTime:   c.DateTime,
			Image:      c.Image,
			Toggle:     c.Toggle,
			Visible:    !c.Hidden,
		})
	}

	for _, f := range d.Filters {
		info.Filters = append(info.Filters, FilterInfo{Name: f.Name, Label: f.Label, Fields: f.Fields})
	}

	return info
}
