package content

import (
	"fmt"
	"strings"
)

const htmlSystemPrompt = "あなたはHTMLメール生成の専門家です。マークダウン記法（```html）や説明文は一切含めず、純粋なHTMLコードのみを返してください。"

const personalizeSystemPrompt = "あなたはプロフェッショナルな営業メールライターです。顧客の役職や立場に合わせて、相手にとって価値のある営業メールを、読みやすく親しみやすい文体で作成します。"

func htmlPrompt(r HTMLRequest) string {
	return fmt.Sprintf(`あなたはプロフェッショナルなHTMLメールデザイナーです。
以下の営業メールテキストを、読みやすく好印象を与えるHTMLメールに変換してください。

【入力テキスト】
%s

【カラーパレット】
- プライマリカラー: %s（見出し、重要な要素に使用）
- アクセントカラー: %s（強調箇所に使用）
- フォント: %s

【必須要件】
- 単一のHTMLとして出力し、説明文は含めない
- 幅600px、中央寄せ
- スタイルは全てインラインCSSで記述し、<style>タグや外部CSS・外部フォントは使用しない
- <script>、<form>、<video>、<iframe>は使用しない
- 本文は16px以上、line-heightは1.8以上
- 入力テキストにない情報、ボタン、リンクは追加しない

【出力】
HTMLコードのみを出力してください。`, r.Text, r.PrimaryColor, r.AccentColor, r.Font)
}

func contentPrompt(r ContentRequest) string {
	var b strings.Builder
	b.WriteString("あなたはプロフェッショナルなビジネスメールライターです。\n")
	b.WriteString("以下の指示に基づいてビジネスメールの本文を日本語で作成し、内容に合った色も提案してください。\n\n")
	fmt.Fprintf(&b, "【指示】\n%s\n\n", r.Instruction)
	if r.Subject != "" {
		fmt.Fprintf(&b, "【件名】\n%s\n\n", r.Subject)
	}
	b.WriteString(`【要件】
- ビジネスメールとして適切な文体と構成
- 簡潔で分かりやすく、必要に応じて箇条書きを使用
- 適切な挨拶と結びの言葉

【色の選択】
- 内容や雰囲気に合ったプライマリカラーとアクセントカラーを16進数カラーコードで指定

【出力形式】
以下のJSONのみを出力してください：
{
  "content": "メール本文",
  "primaryColor": "#2C3E50",
  "accentColor": "#E74C3C"
}`)
	return b.String()
}

func personalizePrompt(r PersonalizeRequest) string {
	orUnknown := func(s string) string {
		if strings.TrimSpace(s) == "" {
			return "不明"
		}
		return s
	}

	var b strings.Builder
	b.WriteString("以下の顧客情報に基づいて、パーソナライズされた営業メールを作成してください。\n\n")
	fmt.Fprintf(&b, "【顧客情報】\n- 名前: %s\n- 会社名: %s\n- 役職: %s\n\n",
		r.Customer.Name, orUnknown(r.Customer.Company), orUnknown(r.Customer.Position))
	fmt.Fprintf(&b, "【営業メールの目的・指示】\n%s\n\n", r.Instruction)
	if r.Subject != "" {
		fmt.Fprintf(&b, "【件名】\n%s\n\n", r.Subject)
	}
	b.WriteString(`【要件】
- 相手にとっての具体的なメリットを明確に伝える
- 過度に形式的な表現は避け、丁寧だが堅苦しすぎないトーンにする
- 役職や会社名を自然に文中で活用する

【出力形式】
件名: （ここに件名）

本文:
（ここに本文）`)
	return b.String()
}
