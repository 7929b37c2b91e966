package domain

import "testing"

// FuzzParseFamilyID checks that parsing arbitrary input never panics and that
// any accepted value round-trips through its canonical string form.
func FuzzParseFamilyID(f *testing.F) {
	f.Add("")
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("00000000-0000-0000-0000-000000000000")
	f.Add("not-a-uuid")
	f.Add("550e8400-e29b-41d4-a716-446655440000\x00suffix")

	f.Fuzz(func(t *testing.T, input string) {
		familyID, err := ParseFamilyID(input)
		if err != nil {
			return
		}
		roundTrip, err := ParseFamilyID(familyID.String())
		if err != nil {
			t.Fatalf("accepted id failed round-trip: %v", err)
		}
		if roundTrip != familyID {
			t.Fatal("round-trip changed id value")
		}
	})
}

// FuzzParseAllIDs checks that every typed id applies the same validation, so
// an input cannot slip through one parser and be rejected by another.
func FuzzParseAllIDs(f *testing.F) {
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("")
	f.Add("invalid")

	f.Fuzz(func(t *testing.T, input string) {
		_, errFamily := ParseFamilyID(input)
		_, errCaregiver := ParseCaregiverID(input)
		_, errAssignment := ParseAssignmentID(input)
		_, errOperator := ParseOperatorID(input)
		_, errBatch := ParseBatchID(input)

		accepted := errFamily == nil
		for _, err := range []error{errCaregiver, errAssignment, errOperator, errBatch} {
			if (err == nil) != accepted {
				t.Fatal("inconsistent validation across id types")
			}
		}
	})
}
