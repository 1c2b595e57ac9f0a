package extract

import "testing"

func TestStripCodeFence(t *testing.T) {
	cases := []struct{ in, want string }{
		{"```json\n[{\"events\": []}]\n```", `[{"events": []}]`},
		{"```\n[1,2]\n```", "[1,2]"},
		{"  [1,2]  ", "[1,2]"},
		{"no fence at all", "no fence at all"},
		{"prefix ```json\n[]\n``` suffix", "[]"},
	}
	for _, c := range cases {
		if got := stripCodeFence(c.in); got != c.want {
			t.Fatalf("stripCodeFence(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestExtractJSONArray(t *testing.T) {
	cases := []struct{ in, want string }{
		{`Here is the result: [{"events": []}] hope it helps`, `[{"events": []}]`},
		{`[1, 2, 3]`, `[1, 2, 3]`},
		{`no array here`, `no array here`},
		// Unbalanced braces inside the span: returned unchanged so the JSON
		// parser reports the real problem.
		{`[{"events": [}]`, `[{"events": [}]`},
	}
	for _, c := range cases {
		if got := extractJSONArray(c.in); got != c.want {
			t.Fatalf("extractJSONArray(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestBuildPrompt_Sections(t *testing.T) {
	prompt := BuildPrompt(defaultTestTable(t), []string{"SE PUSO POWER HUB 868", "revision"})
	for _, sec := range []string{
		"[PURPOSE]", "[COMPONENTS]", "[SYNONYMS]", "[ACTIONS]",
		"[RULES]", "[CONTRACT]", "[EXAMPLES]", "[INPUT]", "[OUTPUT_FORMAT]",
	} {
		if !contains(prompt, sec) {
			t.Fatalf("expected section %s in prompt", sec)
		}
	}
	if !contains(prompt, "EXACTLY 2 elements") {
		t.Fatal("contract does not pin the batch size")
	}
	if !contains(prompt, `"SE PUSO POWER HUB 868"`) {
		t.Fatal("input description missing from prompt")
	}
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	table := defaultTestTable(t)
	descriptions := []string{"a", "b", "c"}
	first := BuildPrompt(table, descriptions)
	for i := 0; i < 5; i++ {
		if BuildPrompt(table, descriptions) != first {
			t.Fatal("prompt is not deterministic across calls")
		}
	}
}
