package classify

// Withdrawal reason categories.
const (
	CategoryPersonal   = "개인사정"
	CategoryFinancial  = "경제적사유"
	CategoryTransfer   = "타학원이동"
	CategoryGrades     = "성적불만"
	CategoryInstructor = "강사불만"
	CategoryMotivation = "학습의욕저하"
	CategorySchedule   = "일정문제"
	CategoryOther      = "기타"
)

// DefaultWithdrawalTable returns the withdrawal reason taxonomy. Order is
// significant: relocation and health keywords are decisive and are checked
// before broad words such as "시간" that show up incidentally in most notes.
func DefaultWithdrawalTable() *Table {
	return NewTable(
		Rule{Category: CategoryPersonal, Keywords: []string{
			"이사", "이주", "전학", "유학", "이민", "해외", "건강", "입원", "병원", "수술", "군입대", "입대", "가정 사정", "집안 사정", "개인 사정", "개인사정",
		}},
		Rule{Category: CategoryFinancial, Keywords: []string{
			"학원비", "수강료", "교육비", "비용", "경제", "형편", "금전",
		}},
		Rule{Category: CategoryTransfer, Keywords: []string{
			"다른 학원", "타학원", "타 학원", "옮기", "옮긴", "과외", "인강", "인터넷 강의",
		}},
		Rule{Category: CategoryGrades, Keywords: []string{
			"성적", "점수", "등급", "효과", "실력",
		}},
		Rule{Category: CategoryInstructor, Keywords: []string{
			"강사 교체", "선생님 교체", "선생님이 싫", "강사가 싫", "수업 방식", "설명이 어렵", "강사 불만",
		}},
		Rule{Category: CategoryMotivation, Keywords: []string{
			"의욕", "흥미", "하기 싫", "힘들어", "지쳐", "번아웃", "재미없",
		}},
		Rule{Category: CategorySchedule, Keywords: []string{
			"시간표", "스케줄", "일정", "시간", "동아리", "통학",
		}},
	)
}

// DefaultWithdrawalCascade classifies withdrawal records into the reason
// taxonomy, defaulting to CategoryOther.
func DefaultWithdrawalCascade() *Cascade {
	return &Cascade{
		Table:          DefaultWithdrawalTable(),
		ExplicitFields: []string{"reason_category", "reason_detail"},
		EvidenceFields: []string{"student_opinion", "parent_opinion", "teacher_opinion", "counsel_note"},
		Default:        CategoryOther,
	}
}
