package extract

import (
	"strings"
	"testing"
	"time"
)

var now = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func TestChallenge_NoMarker(t *testing.T) {
	replies := []string{
		"",
		"오늘 하루는 어땠나요?",
		"미션: 인터뷰 준비\n방법:\n1. 질문 정리",      // labels without the banner
		"이번 주 챌린 지가 있어요",                   // near-miss, not the literal marker
		"This week's challenge: go for a run", // English paraphrase is not recognized
	}
	for _, reply := range replies {
		if got := Challenge(reply, now); got != nil {
			t.Errorf("Challenge(%q) = %+v, want nil", reply, got)
		}
	}
}

func TestChallenge_MarkerWithoutTitle(t *testing.T) {
	reply := "이번 주 챌린지를 소개할게요!\n방법:\n1. 아침에 물 마시기\n목표: 일주일 동안"
	if got := Challenge(reply, now); got != nil {
		t.Errorf("expected nil without a title line, got %+v", got)
	}
}

func TestChallenge_TitleOnly(t *testing.T) {
	reply := "이번 주 챌린지!\n미션: 인터뷰 준비"
	got := Challenge(reply, now)
	if got == nil {
		t.Fatal("expected a candidate, got nil")
	}
	if got.Title != "인터뷰 준비" {
		t.Errorf("Title = %q, want %q", got.Title, "인터뷰 준비")
	}
	if got.Description != "" {
		t.Errorf("Description = %q, want empty", got.Description)
	}
	if got.Deadline != "" {
		t.Errorf("Deadline = %q, want empty", got.Deadline)
	}
	if !got.ExtractedAt.Equal(now) {
		t.Errorf("ExtractedAt = %v, want %v", got.ExtractedAt, now)
	}
}

func TestChallenge_FullBlock(t *testing.T) {
	reply := strings.Join([]string{
		"좋아요, 이번 주 챌린지를 준비했어요.",
		"  미션: 인터뷰 준비  ",
		"방법:",
		"1. 예상 질문 10개 적기",
		"2. 거울 보고 답변 연습",
		"- 녹음해서 들어보기",
		"목표: 금요일까지",
	}, "\n")

	got := Challenge(reply, now)
	if got == nil {
		t.Fatal("expected a candidate, got nil")
	}
	if got.Title != "인터뷰 준비" {
		t.Errorf("Title = %q", got.Title)
	}
	wantDesc := "1. 예상 질문 10개 적기\n2. 거울 보고 답변 연습\n- 녹음해서 들어보기"
	if got.Description != wantDesc {
		t.Errorf("Description = %q, want %q", got.Description, wantDesc)
	}
	if got.Deadline != "금요일까지" {
		t.Errorf("Deadline = %q, want %q", got.Deadline, "금요일까지")
	}
}

func TestChallenge_StepWindowBounded(t *testing.T) {
	// The 5th line after the steps label is step-shaped but must be excluded.
	reply := strings.Join([]string{
		"이번 주 챌린지",
		"미션: 인터뷰 준비",
		"방법:",
		"1. a",
		"2. b",
		"- c",
		"3. d",
		"4. e",
	}, "\n")

	got := Challenge(reply, now)
	if got == nil {
		t.Fatal("expected a candidate, got nil")
	}
	wantDesc := "1. a\n2. b\n- c\n3. d"
	if got.Description != wantDesc {
		t.Errorf("Description = %q, want %q", got.Description, wantDesc)
	}
}

func TestChallenge_NonStepLinesInsideWindowIgnored(t *testing.T) {
	reply := strings.Join([]string{
		"이번 주 챌린지",
		"미션: 산책하기",
		"방법:",
		"천천히 시작하세요",
		"1. 운동화 신기",
		"그리고",
		"2. 10분 걷기",
	}, "\n")

	got := Challenge(reply, now)
	if got == nil {
		t.Fatal("expected a candidate, got nil")
	}
	wantDesc := "1. 운동화 신기\n2. 10분 걷기"
	if got.Description != wantDesc {
		t.Errorf("Description = %q, want %q", got.Description, wantDesc)
	}
}

func TestChallenge_DeadlineWithoutSteps(t *testing.T) {
	reply := "이번 주 챌린지\n미션: 일찍 자기\n목표: 이번 주 내내"
	got := Challenge(reply, now)
	if got == nil {
		t.Fatal("expected a candidate, got nil")
	}
	if got.Description != "" {
		t.Errorf("Description = %q, want empty", got.Description)
	}
	if got.Deadline != "이번 주 내내" {
		t.Errorf("Deadline = %q", got.Deadline)
	}
}

func TestChallenge_FirstLabelWins(t *testing.T) {
	reply := strings.Join([]string{
		"이번 주 챌린지",
		"미션: 첫 번째",
		"미션: 두 번째",
		"목표: 수요일",
		"목표: 토요일",
	}, "\n")

	got := Challenge(reply, now)
	if got == nil {
		t.Fatal("expected a candidate, got nil")
	}
	if got.Title != "첫 번째" {
		t.Errorf("Title = %q, want first title line", got.Title)
	}
	if got.Deadline != "수요일" {
		t.Errorf("Deadline = %q, want first goal line", got.Deadline)
	}
}

func TestIsStepLine(t *testing.T) {
	cases := []struct {
		line string
		want bool
	}{
		{"1. do it", true},
		{"12. later", true},
		{"- dash", true},
		{"-no space", true},
		{"1 no dot", false},
		{". leading dot", false},
		{"step one", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := isStepLine(tc.line); got != tc.want {
			t.Errorf("isStepLine(%q) = %v, want %v", tc.line, got, tc.want)
		}
	}
}
