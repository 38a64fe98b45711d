package aggregates

import "testing"

func TestPlanCascadeDeleteOrder(t *testing.T) {
	r := &contentTypeRepository{}
	want := []string{
		"user2node_notify",
		"user2node_permission",
		"tag_relationship",
		"content_type_allowed",
		"content_type_allowed",
		"content_type2content_type",
		"property_type",
		"property_type_group",
		"document_type",
		"content_type",
		"node",
	}
	steps := r.planCascadeDelete(7)
	if len(steps) != len(want) {
		t.Fatalf("steps: want=%d got=%d", len(want), len(steps))
	}
	for i, step := range steps {
		if step.Table != want[i] {
			t.Fatalf("step %d: want=%s got=%s", i, want[i], step.Table)
		}
		if step.run == nil {
			t.Fatalf("step %d: missing statement", i)
		}
	}
}
