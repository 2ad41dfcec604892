package critical

import "testing"

func TestExtract_Amounts(t *testing.T) {
	tests := []struct {
		text string
		want int64
	}{
		{"보험가입금액 1억 5천만원을 지급합니다", 150000000},
		{"2억원", 200000000},
		{"900원", 900},
		{"1억 2천 500만원", 125000000},
		{"3억 500만원", 305000000},
		{"5천만원", 50000000},
		{"300백만원", 300000000},
		{"1,000만원", 10000000},
		{"5천원", 5000},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			data := Extract(tt.text)
			if len(data.Amounts) != 1 {
				t.Fatalf("expected exactly 1 amount, got %d: %+v", len(data.Amounts), data.Amounts)
			}
			if data.Amounts[0].Value != tt.want {
				t.Errorf("expected %d, got %d", tt.want, data.Amounts[0].Value)
			}
		})
	}
}

func TestExtract_CompoundAmountClaimedOnce(t *testing.T) {
	// The "억+천만" pattern must claim the whole span so the bare "천만"
	// pattern cannot re-extract the tail as 50,000,000.
	data := Extract("암진단보험금 1억 5천만원")

	if len(data.Amounts) != 1 {
		t.Fatalf("expected 1 amount, got %d: %+v", len(data.Amounts), data.Amounts)
	}
	if data.Amounts[0].Value != 150000000 {
		t.Errorf("expected 150000000, got %d", data.Amounts[0].Value)
	}
	if data.Amounts[0].OriginalText != "1억 5천만원" {
		t.Errorf("unexpected original text %q", data.Amounts[0].OriginalText)
	}
}

func TestExtract_MultipleAmountsSortedByPosition(t *testing.T) {
	data := Extract("최초 1회 1천만원, 재진단시 500만원, 한도 2억원")

	if len(data.Amounts) != 3 {
		t.Fatalf("expected 3 amounts, got %d: %+v", len(data.Amounts), data.Amounts)
	}
	wants := []int64{10000000, 5000000, 200000000}
	for i, want := range wants {
		if data.Amounts[i].Value != want {
			t.Errorf("amount[%d]: expected %d, got %d", i, want, data.Amounts[i].Value)
		}
	}
	for i := 1; i < len(data.Amounts); i++ {
		if data.Amounts[i].Position <= data.Amounts[i-1].Position {
			t.Error("amounts not sorted by position")
		}
	}
}

func TestExtract_Periods(t *testing.T) {
	tests := []struct {
		text     string
		wantDays int
		wantUnit string
	}{
		{"계약일로부터 90일", 90, "일"},
		{"면책기간 3개월", 90, "개월"},
		{"2주 이내", 14, "주"},
		{"1년 경과 후", 365, "년"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			data := Extract(tt.text)
			if len(data.Periods) != 1 {
				t.Fatalf("expected 1 period, got %d: %+v", len(data.Periods), data.Periods)
			}
			p := data.Periods[0]
			if p.Days != tt.wantDays {
				t.Errorf("expected %d days, got %d", tt.wantDays, p.Days)
			}
			if p.OriginalUnit != tt.wantUnit {
				t.Errorf("expected unit %q, got %q", tt.wantUnit, p.OriginalUnit)
			}
		})
	}
}

func TestExtract_KCDCodes(t *testing.T) {
	t.Run("single code", func(t *testing.T) {
		data := Extract("갑상선암(C73)의 경우")
		if len(data.KCDCodes) != 1 {
			t.Fatalf("expected 1 code, got %d", len(data.KCDCodes))
		}
		c := data.KCDCodes[0]
		if c.Code != "C73" || c.IsRange || !c.IsValid {
			t.Errorf("unexpected code %+v", c)
		}
	})

	t.Run("range", func(t *testing.T) {
		data := Extract("악성신생물 C00-C97에 해당하는")
		if len(data.KCDCodes) != 1 {
			t.Fatalf("expected 1 code, got %d", len(data.KCDCodes))
		}
		c := data.KCDCodes[0]
		if !c.IsRange {
			t.Fatal("expected range")
		}
		if c.StartCode != "C00" || c.EndCode != "C97" {
			t.Errorf("unexpected endpoints %q-%q", c.StartCode, c.EndCode)
		}
		if !c.IsValid {
			t.Error("C00-C97 should be valid")
		}
	})

	t.Run("range inherits start letter", func(t *testing.T) {
		data := Extract("C00-97")
		if len(data.KCDCodes) != 1 {
			t.Fatalf("expected 1 code, got %d", len(data.KCDCodes))
		}
		c := data.KCDCodes[0]
		if c.EndCode != "C97" {
			t.Errorf("expected inherited end code C97, got %q", c.EndCode)
		}
	})

	t.Run("invalid category letter", func(t *testing.T) {
		data := Extract("U07-Z99 및 Z99-X01")
		if len(data.KCDCodes) != 2 {
			t.Fatalf("expected 2 codes, got %d", len(data.KCDCodes))
		}
		if data.KCDCodes[0].IsValid {
			t.Error("U07-Z99 should be invalid: U is not a valid category")
		}
		if !data.KCDCodes[1].IsValid {
			t.Error("Z99-X01 should be valid: both letters are valid categories")
		}
	})
}

func TestExtract_EmptyAndNoise(t *testing.T) {
	data := Extract("이 문단에는 수치 정보가 없습니다.")
	if len(data.Amounts)+len(data.Periods)+len(data.KCDCodes) != 0 {
		t.Errorf("expected empty extraction, got %+v", data)
	}

	data = Extract("")
	if len(data.Amounts) != 0 {
		t.Error("empty text must yield empty amounts")
	}
}

func TestIntervalSet_Claim(t *testing.T) {
	var s intervalSet

	if !s.Claim(10, 20) {
		t.Fatal("first claim must succeed")
	}
	if s.Claim(15, 25) {
		t.Error("overlapping claim must fail")
	}
	if s.Claim(5, 11) {
		t.Error("claim overlapping range start must fail")
	}
	if !s.Claim(20, 30) {
		t.Error("adjacent half-open claim must succeed")
	}
	if !s.Claim(0, 10) {
		t.Error("claim ending at existing start must succeed")
	}
}
