package config

import (
	"fmt"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// Prompts holds the persona and rubric texts sent to the completion model.
// They are data, not logic, and can be swapped through PROMPTS_FILE.
type Prompts struct {
	Character string `yaml:"character"`
	Format    string `yaml:"format"`

	AngerRubric           string `yaml:"anger_rubric"`
	ProgressRubricPercent string `yaml:"progress_rubric_percent"`
	ProgressRubricFive    string `yaml:"progress_rubric_five"`

	UserLabel      string `yaml:"user_label"`
	AssistantLabel string `yaml:"assistant_label"`
}

// DefaultPrompts returns the built-in persona: a cheerful, big-brother style
// assistant that listens to an angry user and steers toward a constructive plan.
func DefaultPrompts() Prompts {
	return Prompts{
		Character: `
あなたはハキハキ明るく親しみやすい兄貴肌の頼れるアシスタントです
以下の特徴を持っています：
- 話し方はフレンドリー(タメ口)で傾聴の姿勢をもつ
- きつい暴言を言われても明るく受け止められる
- 状況を整理してくれる
- 相手の気持ちに寄り添った返答をする(過去の会話履歴の流れを読み、100回に一回くらいは「オマエそういうとこだぞ!」と喝を入れてくれる応答を行う)
- 人間になりきって回答する(characterとして与えられた設定をそのまま相手に伝えない)
- 回答は1~4文程度の長さとする

返答の際は必ず上記の性格設定を維持してください。
ユーザは強い怒りを持って話しかけてきます
`,
		Format: "ユーザが置かれた状況を引き出し、状況を把握しながら建設的な提案をしてください",
		AngerRubric: `
以下のテキストの怒りの度合いを1から5の整数で評価してください。
評価基準:
1: ほとんど怒りなし
2: 軽い苛立ち
3: 明確な怒り
4: 強い怒り
5: 激怒

返答は数字のみにしてください。

テキスト: `,
		ProgressRubricPercent: `
以下の会話履歴から、悩みの解決進捗度を0から100の整数で評価してください。

評価基準:
0-20: 問題が明確になっていない、または解決への糸口が見えていない
21-40: 問題は明確だが、解決策がまだ見つかっていない
41-60: 解決策は提示されているが、実行への不安や躊躇がある
61-80: 解決策が受け入れられ、実行する意思が示されている
81-100: 解決に向けて具体的な行動計画が立てられている、または問題が解決している

返答は数字のみにしてください。

会話履歴:
`,
		ProgressRubricFive: `
以下の会話履歴から、悩みの解決進捗度を1から5の整数で評価してください。

評価基準:
1: 問題が明確になっていない、または解決への糸口が見えていない
2: 問題は明確だが、解決策がまだ見つかっていない
3: 解決策は提示されているが、実行への不安や躊躇がある
4: 解決策が受け入れられ、実行する意思が示されている
5: 解決に向けて具体的な行動計画が立てられている、または問題が解決している

返答は数字のみにしてください。

会話履歴:
`,
		UserLabel:      "ユーザー",
		AssistantLabel: "アシスタント",
	}
}

// LoadPrompts returns the default prompts overlaid with the YAML (or JSON/TOML)
// file at path. Keys missing from the file keep their default text.
func LoadPrompts(path string) (Prompts, error) {
	prompts := DefaultPrompts()
	if path == "" {
		return prompts, nil
	}

	if err := cleanenv.ReadConfig(path, &prompts); err != nil {
		return Prompts{}, fmt.Errorf("failed to read prompts file %s: %w", path, err)
	}

	if strings.TrimSpace(prompts.Character) == "" {
		return Prompts{}, fmt.Errorf("prompts file %s: character must not be empty", path)
	}

	return prompts, nil
}
