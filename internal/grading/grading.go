// Package grading implements the institutional grading scheme: letter
// grades, grade points, and the pass rule applied to examination results.
package grading

import "math"

// Letter grades awarded on declared results. AB and MP record absence and
// malpractice; they carry no credit toward grade point averages.
const (
	GradeO           = "O"
	GradeAPlus       = "A+"
	GradeA           = "A"
	GradeBPlus       = "B+"
	GradeB           = "B"
	GradeC           = "C"
	GradeP           = "P"
	GradeF           = "F"
	GradeAbsent      = "AB"
	GradeMalpractice = "MP"
)

// PassThreshold is the fraction of maximum marks required to pass.
const PassThreshold = 0.4

// Letter maps a percentage onto the grade scale. Absence is checked before
// malpractice; both override the computed band.
func Letter(percentage float64, absent, malpractice bool) string {
	if absent {
		return GradeAbsent
	}
	if malpractice {
		return GradeMalpractice
	}

	switch {
	case percentage >= 90:
		return GradeO
	case percentage >= 80:
		return GradeAPlus
	case percentage >= 70:
		return GradeA
	case percentage >= 60:
		return GradeBPlus
	case percentage >= 55:
		return GradeB
	case percentage >= 50:
		return GradeC
	case percentage >= 40:
		return GradeP
	default:
		return GradeF
	}
}

// Points returns the grade points for a letter grade. The non-credit
// grades and anything unrecognised score zero.
func Points(letter string) float64 {
	switch letter {
	case GradeO:
		return 10.0
	case GradeAPlus:
		return 9.0
	case GradeA:
		return 8.0
	case GradeBPlus:
		return 7.0
	case GradeB:
		return 6.0
	case GradeC:
		return 5.0
	case GradeP:
		return 4.0
	default:
		return 0.0
	}
}

// Percentage converts obtained marks to a percentage of max. A
// non-positive max yields zero rather than dividing by it.
func Percentage(obtained, max float64) float64 {
	if max <= 0 {
		return 0
	}
	return obtained / max * 100
}

// Passed reports whether a result clears the pass bar. Absence and
// malpractice fail regardless of marks.
func Passed(obtained, max float64, absent, malpractice bool) bool {
	if absent || malpractice {
		return false
	}
	return obtained >= PassThreshold*max
}

// IsCredit reports whether a letter contributes to SGPA/CGPA.
func IsCredit(letter string) bool {
	switch letter {
	case GradeO, GradeAPlus, GradeA, GradeBPlus, GradeB, GradeC, GradeP, GradeF:
		return true
	default:
		return false
	}
}

// GradePointAverage is the arithmetic mean of grade points rounded to two
// decimals. An empty set averages to zero.
func GradePointAverage(points []float64) float64 {
	if len(points) == 0 {
		return 0
	}

	var sum float64
	for _, p := range points {
		sum += p
	}

	return math.Round(sum/float64(len(points))*100) / 100
}
