package parsing

import (
	"strings"
	"testing"

	"github.com/jonathan/academy-desk/internal/normalize"
	"github.com/jonathan/academy-desk/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var withdrawalRules = NewRuleSet(DefaultWithdrawalRules()...)

func TestExtract_ExampleIntake(t *testing.T) {
	text := `학생명: 김민수
과목: 수학
담당 강사: 박선생님T
재원 기간: 2024.03.01 ~ 2025.01.15 (10개월)
학생 의견: 이사를 가게 되어서 그만두게 됐어요`

	rec := withdrawalRules.Extract(text)

	assert.Equal(t, types.PartialRecord{
		FieldName:            "김민수",
		FieldSubject:         "수학",
		FieldTeacher:         "박선생",
		FieldEnrollmentStart: "2024-03-01",
		FieldEnrollmentEnd:   "2025-01-15",
		FieldDurationMonths:  "10",
		FieldStudentOpinion:  "이사를 가게 되어서 그만두게 됐어요",
	}, rec)
}

func TestExtract_InstructorSynonymsAreEquivalent(t *testing.T) {
	labels := []string{"담임", "담임 선생님", "담당", "담당 강사", "담당 선생님", "강사", "담당강사"}

	for _, label := range labels {
		t.Run(label, func(t *testing.T) {
			rec := withdrawalRules.Extract(label + ": 김선생")
			assert.Equal(t, "김선생", rec.String(FieldTeacher))
		})
	}
}

func TestExtract_SynonymsForEveryRule(t *testing.T) {
	for _, r := range DefaultWithdrawalRules() {
		if r.Shape == Compound {
			continue
		}
		var want any
		for i, label := range r.Labels {
			rs := NewRuleSet(r)
			rec := rs.Extract(label + ": 3")
			got, ok := rec[r.Field]
			if r.Output == OutputBool {
				// "3" carries no yes/no meaning
				assert.False(t, ok, "%s/%s", r.Field, label)
				continue
			}
			require.True(t, ok, "%s/%s should extract", r.Field, label)
			if i == 0 {
				want = got
				continue
			}
			assert.Equal(t, want, got, "%s/%s", r.Field, label)
		}
	}
}

func TestExtract_ColonAndBulletVariants(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"ascii colon", "학생명: 김민수"},
		{"full-width colon", "학생명：김민수"},
		{"space before colon", "학생명 : 김민수"},
		{"dash bullet", "- 학생명: 김민수"},
		{"middle dot bullet", "· 학생명: 김민수"},
		{"black square bullet", "■ 학생명: 김민수"},
		{"numbered", "1. 학생명: 김민수"},
		{"markdown bold", "**학생명:** 김민수"},
		{"indented", "   학생명:   김민수   "},
		{"no-break spaces", "\u00a0학생명\u00a0:\u00a0김민수"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := withdrawalRules.Extract(tt.line)
			assert.Equal(t, "김민수", rec.String(FieldName))
		})
	}
}

func TestExtract_LabelOrderIndependent(t *testing.T) {
	text := "학생 의견: 재미없어요\n과목: 영어\n학생명: 이서연"

	rec := withdrawalRules.Extract(text)

	assert.Equal(t, "이서연", rec.String(FieldName))
	assert.Equal(t, "영어", rec.String(FieldSubject))
	assert.Equal(t, "재미없어요", rec.String(FieldStudentOpinion))
}

func TestExtract_FirstLabelInListWins(t *testing.T) {
	// "담임" is listed before "강사", so its value wins even though it appears later.
	text := "강사: 최선생\n담임: 정선생"

	rec := withdrawalRules.Extract(text)

	assert.Equal(t, "정선생", rec.String(FieldTeacher))
}

func TestExtract_MissingFieldsAreAbsent(t *testing.T) {
	rec := withdrawalRules.Extract("학생명: 김민수")

	assert.Len(t, rec, 1)
	_, ok := rec[FieldTeacher]
	assert.False(t, ok)
}

func TestExtract_EmptyAndUnstructuredInput(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\n", "그냥 아무 말이나 적은 메모입니다", "학생명:", ":::"} {
		rec := withdrawalRules.Extract(text)
		assert.Empty(t, rec, "%q", text)
	}
}

func TestExtract_EmptyValueFallsThroughToLaterOccurrence(t *testing.T) {
	rec := withdrawalRules.Extract("학생명:\n학생명: 김민수")
	assert.Equal(t, "김민수", rec.String(FieldName))
}

func TestExtract_MultiLineStopsAtNextLabel(t *testing.T) {
	text := `학생 의견: 요즘 학원이 너무 멀어요.
버스를 두 번 갈아타야 해서
힘들다고 합니다.
학부모 의견: 이사 예정입니다
과목: 국어`

	rec := withdrawalRules.Extract(text)

	assert.Equal(t, "요즘 학원이 너무 멀어요.\n버스를 두 번 갈아타야 해서\n힘들다고 합니다.", rec.String(FieldStudentOpinion))
	assert.Equal(t, "이사 예정입니다", rec.String(FieldParentOpinion))
	assert.Equal(t, "국어", rec.String(FieldSubject))
}

func TestExtract_MultiLineStopsAtSectionMarker(t *testing.T) {
	text := `상담 내용:
1차 상담 진행함
- 숙제 부담 호소

[2차 상담]
추가 상담 예정`

	rec := withdrawalRules.Extract(text)

	assert.Equal(t, "1차 상담 진행함\n- 숙제 부담 호소", rec.String(FieldCounselNote))
}

func TestExtract_CompoundFirstSuppressesFallback(t *testing.T) {
	text := `등록일: 2023.01.01
재원 기간: 2024.03.01 ~ 2025.01.15 (10개월)
퇴원일: 2025.02.28
재원 개월: 24개월`

	rec := withdrawalRules.Extract(text)

	assert.Equal(t, "2024-03-01", rec.String(FieldEnrollmentStart))
	assert.Equal(t, "2025-01-15", rec.String(FieldEnrollmentEnd))
	assert.Equal(t, "10", rec.String(FieldDurationMonths))
}

func TestExtract_CompoundFallsBackToSeparateLabels(t *testing.T) {
	text := `등록일: 2023/09/01
퇴원일: 2024.06.30
수강 개월: 10개월`

	rec := withdrawalRules.Extract(text)

	assert.Equal(t, "2023-09-01", rec.String(FieldEnrollmentStart))
	assert.Equal(t, "2024-06-30", rec.String(FieldEnrollmentEnd))
	assert.Equal(t, "10", rec.String(FieldDurationMonths))
}

func TestExtract_CompoundLabelWithoutRangeUsesDurationFallback(t *testing.T) {
	rec := withdrawalRules.Extract("재원 기간: 약 8개월")

	assert.Equal(t, "8", rec.String(FieldDurationMonths))
	assert.False(t, rec.Has(FieldEnrollmentStart))
}

func TestExtract_CompoundDerivesDurationWhenMissing(t *testing.T) {
	rec := withdrawalRules.Extract("수강 기간: 2024.03.01 ~ 2024.09.15")

	assert.Equal(t, "2024-03-01", rec.String(FieldEnrollmentStart))
	assert.Equal(t, "2024-09-15", rec.String(FieldEnrollmentEnd))
	assert.Equal(t, "6", rec.String(FieldDurationMonths))
}

func TestExtract_CompoundVariants(t *testing.T) {
	tests := []struct {
		name, value, start, end, months string
	}{
		{"dash range", "2024-03-01 - 2024-12-31 (9개월)", "2024-03-01", "2024-12-31", "9"},
		{"korean dates", "2024년 3월 1일 ~ 2024년 12월 1일", "2024-3-1", "2024-12-1", "9"},
		{"full-width paren with 약", "2024.03.01～2025.03.01（약 12개월）", "2024-03-01", "2025-03-01", "12"},
		{"부터 까지", "2024.03.01부터 2024.05.01까지 (2개월)", "2024-03-01", "2024-05-01", "2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := withdrawalRules.Extract("재원 기간: " + tt.value)
			assert.Equal(t, tt.start, rec.String(FieldEnrollmentStart))
			assert.Equal(t, tt.end, rec.String(FieldEnrollmentEnd))
			assert.Equal(t, tt.months, rec.String(FieldDurationMonths))
		})
	}
}

func TestExtract_CompoundPartialDates(t *testing.T) {
	tests := []struct {
		name, value, start, end, months string
	}{
		{"year and month", "2024.03 ~ 2025.01", "2024-03", "2025-01", "10"},
		{"korean year and month", "2024년 3월부터 2025년 1월까지", "2024-3", "2025-1", "10"},
		{"still enrolled", "2024.03.01 ~ 현재", "2024-03-01", "", ""},
		{"still enrolled with count", "2024.03.01 ~ 재원 중 (7개월)", "2024-03-01", "", "7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := withdrawalRules.Extract("재원 기간: " + tt.value)
			assert.Equal(t, tt.start, rec.String(FieldEnrollmentStart))
			assert.Equal(t, tt.end, rec.String(FieldEnrollmentEnd))
			assert.Equal(t, tt.months, rec.String(FieldDurationMonths))
			assert.NotContains(t, rec.String(FieldDurationMonths), "2024", "a year is never a duration")
		})
	}
}

func TestExtract_DurationWithoutCountIsAbsent(t *testing.T) {
	for _, value := range []string{"오래 다님", "2024 ~ 2025", "작년부터"} {
		t.Run(value, func(t *testing.T) {
			rec := withdrawalRules.Extract("재원 기간: " + value)
			assert.False(t, rec.Has(FieldDurationMonths))
		})
	}
}

func TestExtract_PhoneWithoutDigitsIsAbsent(t *testing.T) {
	rec := withdrawalRules.Extract("학부모 연락처: 없음\n학생 연락처: 010 1111 2222")

	assert.False(t, rec.Has(FieldParentPhone))
	assert.Equal(t, "010-1111-2222", rec[FieldStudentPhone])
}

func TestMonthCount(t *testing.T) {
	assert.Equal(t, "10", MonthCount("10개월").Display)
	assert.Equal(t, "-", MonthCount("2024.03 ~ 2025.01").Display)
	assert.Equal(t, "-", MonthCount("일년").Display)
}

func TestExtract_NormalizedFields(t *testing.T) {
	text := `학부모 연락처: 010 1234 5678
학생 연락처: 01098765432
수업 태도: 매우 낮음
과제: 4점
출결: 보통
재등록 가능성: 없음`

	rec := withdrawalRules.Extract(text)

	assert.Equal(t, "010-1234-5678", rec[FieldParentPhone])
	assert.Equal(t, "010-9876-5432", rec[FieldStudentPhone])
	assert.Equal(t, 1.0, rec[FieldAttitude])
	assert.Equal(t, 4.0, rec[FieldHomework])
	assert.Equal(t, 3.0, rec[FieldAttendance])
	assert.Equal(t, false, rec[FieldReturnPossible])
}

func TestExtract_UnratedQualitativeIsAbsent(t *testing.T) {
	rec := withdrawalRules.Extract("수업 태도: 그럭저럭")
	assert.False(t, rec.Has(FieldAttitude))
}

func TestDerive_GradeFromClassName(t *testing.T) {
	rec := withdrawalRules.Extract("반: 중2 수학A반")
	withdrawalRules.Derive(rec)
	assert.Equal(t, "중2", rec.String(FieldGrade))

	direct := withdrawalRules.Extract("반: 중2 수학A반\n학년: 중3")
	withdrawalRules.Derive(direct)
	assert.Equal(t, "중3", direct.String(FieldGrade), "a directly extracted grade is kept")
}

func TestStripRoleSuffix(t *testing.T) {
	tests := []struct{ in, want string }{
		{"박선생님T", "박선생"},
		{"김T", "김"},
		{"이선생 T", "이선생"},
		{"최쌤", "최쌤"},
		{"김선생", "김선생"},
		{"홍길동님", "홍길동"},
		{"Matt", "Matt"},
		{"님", "님"},
		{"  ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, StripRoleSuffix(tt.in))
		})
	}
}

func TestGradeFromClassName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"중2 수학A반", "중2"},
		{"고등학교 1학년 심화반", "고1"},
		{"초6 영어", "초6"},
		{"초등 3학년반", "초3"},
		{"중5반", ""},
		{"집중반 2", ""},
		{"수학 심화반", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, GradeFromClassName(tt.in))
		})
	}
}

func TestMonthsBetween(t *testing.T) {
	n, ok := MonthsBetween("2024-03-01", "2025-01-15")
	assert.True(t, ok)
	assert.Equal(t, 10, n)

	n, ok = MonthsBetween("2024-03-20", "2024-04-10")
	assert.False(t, ok, "less than a month")
	assert.Zero(t, n)

	n, ok = MonthsBetween("2024-3", "2025-01")
	assert.True(t, ok, "year-month dates count from the first")
	assert.Equal(t, 10, n)

	_, ok = MonthsBetween("not-a-date", "2024-01-01")
	assert.False(t, ok)
}

func TestRuleSet_FieldsAndCanonicalLabels(t *testing.T) {
	fields := withdrawalRules.Fields()

	assert.Equal(t, FieldName, fields[0])
	assert.Contains(t, fields, FieldEnrollmentStart)
	assert.Contains(t, fields, FieldDurationMonths)
	assert.NotContains(t, fields, FieldEnrollment, "compound rules expose their parts")

	label, ok := withdrawalRules.CanonicalLabel(FieldTeacher)
	assert.True(t, ok)
	assert.Equal(t, "담임", label)

	label, ok = withdrawalRules.CanonicalLabel(FieldEnrollmentStart)
	assert.True(t, ok)
	assert.Equal(t, "등록일", label)
}

func TestNewRuleSet_CustomSmallTable(t *testing.T) {
	rs := NewRuleSet(ExtractionRule{
		Field:      "visit_date",
		Labels:     []string{"방문일", "visit date"},
		Normalizer: normalize.Date,
	})

	assert.Equal(t, "2024-05-05", rs.Extract("Visit Date: 2024/05/05").String("visit_date"))
	assert.Equal(t, "2024-05-05", rs.Extract("방문일: 2024.05.05").String("visit_date"))
}

func TestExtract_ConcurrentUse(t *testing.T) {
	text := strings.Repeat("학생명: 김민수\n담당: 박T\n", 3)
	done := make(chan types.PartialRecord, 16)
	for i := 0; i < cap(done); i++ {
		go func() { done <- withdrawalRules.Extract(text) }()
	}
	for i := 0; i < cap(done); i++ {
		rec := <-done
		assert.Equal(t, "김민수", rec.String(FieldName))
		assert.Equal(t, "박", rec.String(FieldTeacher))
	}
}
