package parsing

import (
	"regexp"
	"strings"

	"github.com/jonathan/academy-desk/internal/normalize"
)

// Withdrawal intake field names.
const (
	FieldName            = "name"
	FieldSchool          = "school"
	FieldGrade           = "grade"
	FieldClassName       = "class_name"
	FieldSubject         = "subject"
	FieldTeacher         = "teacher"
	FieldCounselor       = "counselor"
	FieldParentPhone     = "parent_phone"
	FieldStudentPhone    = "student_phone"
	FieldEnrollment      = "enrollment_period"
	FieldEnrollmentStart = "enrollment_start"
	FieldEnrollmentEnd   = "enrollment_end"
	FieldDurationMonths  = "duration_months"
	FieldReasonCategory  = "reason_category"
	FieldReasonDetail    = "reason_detail"
	FieldAttitude        = "attitude"
	FieldHomework        = "homework"
	FieldAttendance      = "attendance"
	FieldReturnPossible  = "return_possible"
	FieldStudentOpinion  = "student_opinion"
	FieldParentOpinion   = "parent_opinion"
	FieldTeacherOpinion  = "teacher_opinion"
	FieldCounselNote     = "counsel_note"
)

// DefaultWithdrawalRules returns the label table for withdrawal intake text.
// Each call builds a fresh slice; compile it once with NewRuleSet.
func DefaultWithdrawalRules() []ExtractionRule {
	rating := normalize.Default().Normalize
	return []ExtractionRule{
		{Field: FieldName, Labels: []string{"학생명", "학생 이름", "원생명", "이름", "성명"}},
		{Field: FieldSchool, Labels: []string{"학교", "학교명", "재학 학교"}},
		{Field: FieldGrade, Labels: []string{"학년"}},
		{
			Field:       FieldClassName,
			Labels:      []string{"반", "반명", "수강반", "클래스"},
			PostExtract: []Derivation{{Target: FieldGrade, Derive: GradeFromClassName}},
		},
		{Field: FieldSubject, Labels: []string{"과목", "수강 과목"}},
		{Field: FieldTeacher, Labels: []string{"담임", "담임 선생님", "담당", "담당 강사", "담당 선생님", "강사"}, Clean: StripRoleSuffix},
		{Field: FieldCounselor, Labels: []string{"상담자", "상담 선생님", "상담 교사", "상담 강사"}, Clean: StripRoleSuffix},
		{Field: FieldParentPhone, Labels: []string{"학부모 연락처", "보호자 연락처", "부모님 연락처", "연락처", "전화번호"}, Normalizer: normalize.Phone},
		{Field: FieldStudentPhone, Labels: []string{"학생 연락처", "학생 전화번호"}, Normalizer: normalize.Phone},
		{
			Field:  FieldEnrollment,
			Labels: []string{"재원 기간", "수강 기간", "등록 기간"},
			Shape:  Compound,
			Composite: &Composite{
				StartField:    FieldEnrollmentStart,
				EndField:      FieldEnrollmentEnd,
				DurationField: FieldDurationMonths,
			},
			Fallback: []ExtractionRule{
				{Field: FieldEnrollmentStart, Labels: []string{"등록일", "입학일", "시작일", "재원 시작일", "첫 수업일"}, Normalizer: normalize.Date},
				{Field: FieldEnrollmentEnd, Labels: []string{"퇴원일", "종료일", "마지막 수업일", "퇴원 예정일"}, Normalizer: normalize.Date},
				{Field: FieldDurationMonths, Labels: []string{"재원 개월", "수강 개월", "재원 기간", "수강 기간"}, Normalizer: MonthCount},
			},
		},
		{Field: FieldReasonCategory, Labels: []string{"퇴원 유형", "사유 분류", "퇴원 분류"}},
		{Field: FieldReasonDetail, Labels: []string{"퇴원 사유", "사유", "퇴원 이유", "그만두는 이유"}, Shape: MultiLineUntilMarker},
		{Field: FieldAttitude, Labels: []string{"수업 태도", "태도"}, Normalizer: rating, Output: OutputNumeric},
		{Field: FieldHomework, Labels: []string{"과제 수행", "과제", "숙제"}, Normalizer: rating, Output: OutputNumeric},
		{Field: FieldAttendance, Labels: []string{"출결", "출석"}, Normalizer: rating, Output: OutputNumeric},
		{Field: FieldReturnPossible, Labels: []string{"복귀 가능성", "재등록 가능성", "재등록 의사"}, Normalizer: normalize.YesNo, Output: OutputBool},
		{Field: FieldStudentOpinion, Labels: []string{"학생 의견"}, Shape: MultiLineUntilMarker},
		{Field: FieldParentOpinion, Labels: []string{"학부모 의견", "보호자 의견", "부모님 의견"}, Shape: MultiLineUntilMarker},
		{Field: FieldTeacherOpinion, Labels: []string{"강사 의견", "선생님 의견", "담임 의견", "담당 강사 의견"}, Shape: MultiLineUntilMarker},
		{Field: FieldCounselNote, Labels: []string{"상담 내용", "상담 메모", "특이사항", "비고"}, Shape: MultiLineUntilMarker},
	}
}

// MonthCount is normalize.Months that yields the placeholder, and so leaves
// the field absent, when the value states no month count. The compound
// labels feed it whatever the range pattern could not read.
func MonthCount(raw string) normalize.Value {
	v := normalize.Months(raw)
	if v.Numeric <= 0 {
		return normalize.Value{Display: normalize.Placeholder}
	}
	return v
}

var (
	roleLetterRE = regexp.MustCompile(`(\p{Hangul})` + hs + `*[Tt]$`)
	honorificRE  = regexp.MustCompile(hs + `*님$`)
)

// StripRoleSuffix removes the trailing "T" role letter and "님" honorific
// staff append to names: "박선생님T" -> "박선생".
func StripRoleSuffix(name string) string {
	trimmed := strings.TrimSpace(name)
	out := roleLetterRE.ReplaceAllString(trimmed, "$1")
	out = strings.TrimSpace(honorificRE.ReplaceAllString(out, ""))
	if out == "" {
		return trimmed
	}
	return out
}

var gradeRE = regexp.MustCompile(`(초|중|고)(?:등학교|등학생|등|학교|학생)?` + hs + `*([1-6])(?:` + hs + `*학년)?`)

// GradeFromClassName derives a coarse grade token such as "중2" from a class
// name like "중2 수학A반". It returns "" when no token is present.
func GradeFromClassName(className string) string {
	m := gradeRE.FindStringSubmatch(className)
	if m == nil {
		return ""
	}
	if m[1] != "초" && m[2] > "3" {
		return ""
	}
	return m[1] + m[2]
}
