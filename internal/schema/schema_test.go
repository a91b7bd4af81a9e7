package schema

import (
	"strings"
	"testing"
)

func TestJobOfferDefaultsSubstitutedOnAbsence(t *testing.T) {
	sch := JobOffer()
	out, err := sch.Validate(map[string]any{
		"company": "Acme",
	})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !out.Valid {
		t.Fatalf("expected valid outcome, errors: %v", out.Errors)
	}
	if got := out.Data["title"]; got != DefaultOfferTitle {
		t.Fatalf("title = %v, want %q", got, DefaultOfferTitle)
	}
	if got := out.Data["contractType"]; got != DefaultContractType {
		t.Fatalf("contractType = %v, want %q", got, DefaultContractType)
	}
}

func TestResumeOptionalFieldsAbsentNotNull(t *testing.T) {
	sch := Resume()
	out, err := sch.Validate(map[string]any{
		"firstName": "Jean",
	})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !out.Valid {
		t.Fatalf("expected valid outcome, errors: %v", out.Errors)
	}
	if _, ok := out.Data["lastName"]; ok {
		t.Fatal("absent optional field must stay absent")
	}
	if len(out.Data) != 1 {
		t.Fatalf("unexpected extra fields: %#v", out.Data)
	}
}

func TestContractTypeEnumViolation(t *testing.T) {
	sch := JobOffer()
	out, err := sch.Validate(map[string]any{
		"contractType": "freelance",
	})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if out.Valid {
		t.Fatal("expected invalid outcome for enum violation")
	}
	found := false
	for _, fe := range out.Errors {
		if strings.Contains(fe.Path, "contractType") {
			found = true
		}
	}
	if !found {
		t.Fatalf("no error mentions contractType: %v", out.Errors)
	}
}

func TestUnknownFieldRejected(t *testing.T) {
	sch := Resume()
	out, err := sch.Validate(map[string]any{
		"firstName": "Jean",
		"shoeSize":  "43",
	})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if out.Valid {
		t.Fatal("expected invalid outcome for unknown field")
	}
}

func TestWrongTypeRejected(t *testing.T) {
	sch := Resume()
	out, err := sch.Validate(map[string]any{
		"yearsOfExperience": "three",
	})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if out.Valid {
		t.Fatal("expected invalid outcome for wrong field type")
	}
}

func TestArrayFieldAccepted(t *testing.T) {
	sch := Resume()
	out, err := sch.Validate(map[string]any{
		"skills": []any{"Go", "SQL"},
	})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !out.Valid {
		t.Fatalf("expected valid outcome, errors: %v", out.Errors)
	}
}

func TestValidateDoesNotMutateInput(t *testing.T) {
	sch := JobOffer()
	in := map[string]any{"company": "Acme"}
	if _, err := sch.Validate(in); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if _, ok := in["title"]; ok {
		t.Fatal("input map gained a default")
	}
}
