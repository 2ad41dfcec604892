package relation

import (
	"fmt"
	"strings"
)

// promptTemplate instructs the model to return strict JSON. The action
// vocabulary and condition types mirror the closed schema in types.go;
// anything outside it is dropped during decoding.
const promptTemplate = `당신은 보험약관 분석 전문가입니다. 아래 약관 조항에서 보장 관계를 추출하세요.

조항:
%s

각 관계를 subject(보장/담보명), action, object(질병/사유)로 추출하고,
조항에 명시된 수치 조건을 conditions에 포함하세요.

action은 다음 중 하나입니다: COVERS, EXCLUDES, REQUIRES, REDUCES, LIMITS, REFERENCES
condition type은 다음 중 하나입니다: waiting_period(일 단위), payment_amount(원 단위), reduction_ratio(비율)

다음 JSON 형식으로만 응답하세요:
{
  "relations": [
    {
      "subject": "암진단보험금",
      "action": "COVERS",
      "object": "갑상선암",
      "conditions": [
        {"type": "waiting_period", "value": 90, "description": "계약일로부터 90일"}
      ],
      "confidence": 0.95,
      "reasoning": "조항이 진단 확정시 지급을 명시"
    }
  ],
  "confidence": 0.9
}`

// buildPrompt renders the extraction prompt for one clause.
func buildPrompt(clauseText string) string {
	return fmt.Sprintf(promptTemplate, strings.TrimSpace(clauseText))
}
