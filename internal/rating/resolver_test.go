package rating

import (
	"testing"

	"github.com/glovehealth/ichra-engine/internal/domain"
)

func intPtr(n int) *int { return &n }

// dobForAge builds a DOB string resolving to the given age at the rating
// reference date.
func dobForAge(age int) string {
	birth := domain.RatingReferenceDate.AddDate(-age, -6, 0)
	return birth.Format("2006-01-02")
}

func memberAges(members []domain.RatedMember) []int {
	ages := make([]int, len(members))
	for i, m := range members {
		ages[i] = m.Age
	}
	return ages
}

func TestResolveMembersThreeChildRule(t *testing.T) {
	rec := &domain.EmployeeRecord{
		State:    "IL",
		FamilySt: domain.FamilyStatusEmployeeChild,
		Age:      intPtr(48),
		ChildDOBs: []string{
			dobForAge(25), dobForAge(20), dobForAge(19), dobForAge(17), dobForAge(15),
		},
	}

	members := ResolveMembers(rec)

	// Employee plus: the 3 oldest under-21 children (20, 19, 17) and the
	// 25-year-old who is always rated. The 15-year-old falls off.
	want := []int{48, 20, 19, 17, 25}
	got := memberAges(members)
	if len(got) != len(want) {
		t.Fatalf("rated members = %v, want ages %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("rated member ages = %v, want %v", got, want)
		}
	}
	if members[0].Role != domain.RoleEmployee {
		t.Errorf("first member role = %s, want EE", members[0].Role)
	}
}

func TestResolveMembersSpouseOnlyWhenCovered(t *testing.T) {
	rec := &domain.EmployeeRecord{
		State:     "IL",
		FamilySt:  domain.FamilyStatusEmployee,
		Age:       intPtr(40),
		SpouseDOB: dobForAge(38),
	}
	if got := len(ResolveMembers(rec)); got != 1 {
		t.Errorf("EE status should rate employee only, got %d members", got)
	}

	rec.FamilySt = domain.FamilyStatusEmployeeSpouse
	members := ResolveMembers(rec)
	if len(members) != 2 || members[1].Role != domain.RoleSpouse {
		t.Errorf("ES status should rate employee and spouse, got %v", members)
	}
}

func TestResolveMembersOmitsUnresolvable(t *testing.T) {
	rec := &domain.EmployeeRecord{
		State:     "IL",
		FamilySt:  domain.FamilyStatusFamily,
		Age:       intPtr(40),
		SpouseDOB: "not a date",
		ChildDOBs: []string{"also bad", dobForAge(10), ""},
	}
	members := ResolveMembers(rec)
	if len(members) != 2 {
		t.Fatalf("expected employee + one resolvable child, got %v", members)
	}
	if members[1].Age != 10 {
		t.Errorf("child age = %d, want 10", members[1].Age)
	}
}

func TestResolveMembersChildrenIgnoredForEE(t *testing.T) {
	rec := &domain.EmployeeRecord{
		State:     "IL",
		FamilySt:  domain.FamilyStatusEmployee,
		Age:       intPtr(40),
		ChildDOBs: []string{dobForAge(10)},
	}
	if got := len(ResolveMembers(rec)); got != 1 {
		t.Errorf("EE status must not rate children, got %d members", got)
	}
}

func TestEldestMemberAgeIgnoresChildCap(t *testing.T) {
	rec := &domain.EmployeeRecord{
		State:     "IL",
		FamilySt:  domain.FamilyStatusFamily,
		Age:       intPtr(45),
		SpouseDOB: dobForAge(62),
		ChildDOBs: []string{dobForAge(20), dobForAge(18), dobForAge(16), dobForAge(14)},
	}
	eldest, ok := EldestMemberAge(rec)
	if !ok || eldest != 62 {
		t.Errorf("EldestMemberAge = (%d, %v), want (62, true)", eldest, ok)
	}

	empty := &domain.EmployeeRecord{State: "IL"}
	if _, ok := EldestMemberAge(empty); ok {
		t.Error("EldestMemberAge should not resolve without any ages")
	}
}
