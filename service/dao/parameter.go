package dao

// Parameter narrows List results, i.e. NewParameter("State", "ROLLBACK").
type Parameter struct {
	Name  string
	Value interface{}
}

func NewParameter(name string, values ...string) *Parameter {
	if len(values) == 1 {
		return &Parameter{Name: name, Value: values[0]}
	}
	return &Parameter{Name: name, Value: values}
}

// FilterByState reports whether an entity in the supplied state passes the
// optional state parameter.
func FilterByState(state string, parameters []*Parameter) bool {
	if len(parameters) != 1 || parameters[0].Name != "State" {
		return true
	}
	switch actual := parameters[0].Value.(type) {
	case string:
		return state == actual
	case []string:
		for _, candidate := range actual {
			if state == candidate {
				return true
			}
		}
		return false
	}
	return true
}
