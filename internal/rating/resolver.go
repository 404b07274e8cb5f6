// Package rating derives the list of rated members for an employee census
// record. Most states price each member individually by age; the resolver
// applies the age cutoffs and the ACA 3-child rule so the premium engine can
// sum rates without re-reading raw census data.
package rating

import (
	"sort"

	"github.com/glovehealth/ichra-engine/internal/census"
	"github.com/glovehealth/ichra-engine/internal/domain"
)

// ChildRatingAgeMax is the last age at which the ACA caps the number of
// rated children. Children at or below this age compete for the three rated
// slots; older children are always rated individually.
const ChildRatingAgeMax = 20

// MaxRatedChildrenUnder21 is the ACA cap: only the three oldest children
// under 21 contribute to an age-banded premium.
const MaxRatedChildrenUnder21 = 3

// ResolveMembers converts one employee record into the ordered rated-member
// list: employee, spouse (when covered), then the three oldest under-21
// children followed by every child 21 or older. Members whose age cannot be
// resolved are omitted; callers detect the resulting zero premiums and
// report them.
func ResolveMembers(rec *domain.EmployeeRecord) []domain.RatedMember {
	var members []domain.RatedMember

	if age, ok := census.EmployeeAge(rec); ok {
		members = append(members, domain.RatedMember{Role: domain.RoleEmployee, Age: age})
	}

	fs := rec.FamilyStatus()
	if fs.IncludesSpouse() {
		if age, ok := census.ParseDOBAge(rec.SpouseDOB, domain.RatingReferenceDate); ok {
			members = append(members, domain.RatedMember{Role: domain.RoleSpouse, Age: age})
		}
	}

	if fs.IncludesChildren() {
		members = append(members, ratedChildren(rec)...)
	}

	return members
}

// ratedChildren collects resolvable children and applies the 3-child rule:
// under-21 children sorted oldest first, top three kept, then all 21-plus
// children appended in slot order.
func ratedChildren(rec *domain.EmployeeRecord) []domain.RatedMember {
	var under21, adult []domain.RatedMember

	for slot, dob := range rec.ChildDOBs {
		age, ok := census.ParseDOBAge(dob, domain.RatingReferenceDate)
		if !ok {
			continue
		}
		member := domain.RatedMember{Role: domain.ChildRole(slot + 2), Age: age}
		if age <= ChildRatingAgeMax {
			under21 = append(under21, member)
		} else {
			adult = append(adult, member)
		}
	}

	sort.SliceStable(under21, func(i, j int) bool { return under21[i].Age > under21[j].Age })
	if len(under21) > MaxRatedChildrenUnder21 {
		under21 = under21[:MaxRatedChildrenUnder21]
	}

	return append(under21, adult...)
}

// EldestMemberAge returns the oldest age across the employee and every
// covered dependent, with no 3-child cap. Group-priced products (cooperative
// and Sedera) key their single family rate off this age. Returns ok=false
// when not even the employee's age resolves.
func EldestMemberAge(rec *domain.EmployeeRecord) (int, bool) {
	eldest, found := 0, false

	if age, ok := census.EmployeeAge(rec); ok {
		eldest, found = age, true
	}

	fs := rec.FamilyStatus()
	if fs.IncludesSpouse() {
		if age, ok := census.ParseDOBAge(rec.SpouseDOB, domain.RatingReferenceDate); ok && (!found || age > eldest) {
			eldest, found = age, true
		}
	}
	if fs.IncludesChildren() {
		for _, dob := range rec.ChildDOBs {
			if age, ok := census.ParseDOBAge(dob, domain.RatingReferenceDate); ok && (!found || age > eldest) {
				eldest, found = age, true
			}
		}
	}

	return eldest, found
}
