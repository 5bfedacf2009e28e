package item

import (
	"fmt"

	"github.com/bytedance/sonic"
)

// Relation maps classifier output indices to item records. It is stored as
// JSON in the model's custom metadata under the "relation" key.
type Relation struct {
	Time     int64    `json:"time"`
	Idx2ID   []string `json:"idx2id"`
	Idx2Name []string `json:"idx2name"`
	Idx2Type []string `json:"idx2type"`
}

// Record is the item behind one class index.
type Record struct {
	Class int
	ID    string
	Name  string
	Type  string
}

// ParseRelation decodes and validates relation metadata.
func ParseRelation(data string) (*Relation, error) {
	var rel Relation
	if err := sonic.UnmarshalString(data, &rel); err != nil {
		return nil, fmt.Errorf("failed to unmarshal relation: %w", err)
	}
	if len(rel.Idx2ID) == 0 {
		return nil, fmt.Errorf("relation has no classes")
	}
	if len(rel.Idx2Name) != len(rel.Idx2ID) || len(rel.Idx2Type) != len(rel.Idx2ID) {
		return nil, fmt.Errorf("relation tables differ in length: %d ids, %d names, %d types",
			len(rel.Idx2ID), len(rel.Idx2Name), len(rel.Idx2Type))
	}
	return &rel, nil
}

// Record returns the item of class i.
func (r *Relation) Record(i int) (Record, bool) {
	if i < 0 || i >= len(r.Idx2ID) {
		return Record{}, false
	}
	return Record{Class: i, ID: r.Idx2ID[i], Name: r.Idx2Name[i], Type: r.Idx2Type[i]}, true
}
