package main

import (
	"testing"

	"lumen/internal/api"
	"lumen/internal/insight"
	"lumen/internal/lineage"
	"lumen/internal/testsupport"
)

func setupGuidanceEnv(t *testing.T) *cliTestEnv {
	t.Helper()
	server := completionServer(t, testsupport.SampleResponse)
	env := setupCLITestEnv(t, testsupport.WithPrimaryKey("test-key"), testsupport.WithPrimaryBaseURL(server.URL))
	testsupport.WriteSessions(t, env.cfg.Paths.SessionsDir,
		testsupport.ShadowSession("s1", 1, "deadline"),
		testsupport.ShadowSession("s2", 3, "family call"),
		testsupport.MeditationSession("m1", 2),
	)
	return env
}

func TestGuidanceExplainAndVerifyAcrossInvocations(t *testing.T) {
	env := setupGuidanceEnv(t)

	out, _, err := runCLI(t, []string{"guidance", "--user", "alice", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("guidance: %v", err)
	}
	resp := decodeOutput[api.GuidanceResponse](t, out)
	if resp.FromCache || resp.Insight.SynthesisID == "" || len(resp.Insight.Recommendations) != 2 {
		t.Fatalf("unexpected guidance response %+v", resp)
	}
	recID := resp.Insight.Recommendations[0].ID

	out, _, err = runCLI(t, []string{"guidance", "--user", "alice", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("second guidance: %v", err)
	}
	if again := decodeOutput[api.GuidanceResponse](t, out); !again.FromCache || again.CachedAt == "" {
		t.Fatalf("expected cached guidance on second call, got %+v", again)
	}

	out, _, err = runCLI(t, []string{"explain", "recommendation", recID}, env.configPath)
	if err != nil {
		t.Fatalf("explain recommendation: %v", err)
	}
	requireContains(t, out, "Recommendation "+recID)
	requireContains(t, out, "Because:")

	out, _, err = runCLI(t, []string{"explain", "synthesis", resp.Insight.SynthesisID, "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("explain synthesis: %v", err)
	}
	if syn := decodeOutput[lineage.SynthesisExplanation](t, out); len(syn.Recommendations) != 2 {
		t.Fatalf("expected 2 explained recommendations, got %d", len(syn.Recommendations))
	}

	out, _, err = runCLI(t, []string{"explain", "lineage", recID}, env.configPath)
	if err != nil {
		t.Fatalf("explain lineage: %v", err)
	}
	if raw := decodeOutput[lineage.RecommendationLineage](t, out); raw.UserID != "alice" || len(raw.ContributingSessionIDs) == 0 {
		t.Fatalf("unexpected raw lineage %+v", raw)
	}

	out, _, err = runCLI(t, []string{"history", "alice", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if page := decodeOutput[lineage.HistoryPage](t, out); page.Total != 1 || page.Syntheses[0].ID != resp.Insight.SynthesisID {
		t.Fatalf("unexpected history %+v", page)
	}

	out, _, err = runCLI(t, []string{"verify", recID, "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if v := decodeOutput[lineage.VerifyResult](t, out); !v.IsValid {
		t.Fatalf("expected valid lineage, got %+v", v)
	}
}

func TestGuidanceTableOutput(t *testing.T) {
	env := setupGuidanceEnv(t)

	out, _, err := runCLI(t, []string{"guidance", "--practice", "breathwork=Box breathing"}, env.configPath)
	if err != nil {
		t.Fatalf("guidance: %v", err)
	}
	requireContains(t, out, "Pattern (")
	requireContains(t, out, "shadow-journal")
	requireContains(t, out, "Synthesis: ")
}

func TestGuidanceWithoutProviderFails(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"guidance"}, env.configPath); err == nil {
		t.Fatal("expected guidance to fail without a provider")
	}
}

func TestCacheShowAndClear(t *testing.T) {
	env := setupGuidanceEnv(t)

	out, _, err := runCLI(t, []string{"cache", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("cache show: %v", err)
	}
	requireContains(t, out, "Guidance cache is empty")

	if _, _, err := runCLI(t, []string{"guidance"}, env.configPath); err != nil {
		t.Fatalf("guidance: %v", err)
	}

	out, _, err = runCLI(t, []string{"cache", "show", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("cache show: %v", err)
	}
	view := decodeOutput[cacheView](t, out)
	if !view.Present || view.ContextHash == "" || view.UserID == "" || view.Expired {
		t.Fatalf("unexpected cache view %+v", view)
	}

	if _, _, err := runCLI(t, []string{"cache", "clear"}, env.configPath); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	out, _, err = runCLI(t, []string{"cache", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("cache show: %v", err)
	}
	requireContains(t, out, "Guidance cache is empty")
}

func TestHistoryDefaultsToConfiguredUser(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No syntheses recorded for "+env.cfg.Guidance.DefaultUser)
}

func TestVerifyMissingRecommendation(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"verify", "missing-id"}, env.configPath)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	requireContains(t, out, lineage.IssueNotFound)
}

func TestParsePracticeRefs(t *testing.T) {
	refs, err := parsePracticeRefs([]string{"breathwork=Box breathing", " journal "})
	if err != nil {
		t.Fatalf("parsePracticeRefs: %v", err)
	}
	want := []insight.PracticeRef{{ID: "breathwork", Name: "Box breathing"}, {ID: "journal"}}
	if len(refs) != len(want) || refs[0] != want[0] || refs[1] != want[1] {
		t.Fatalf("unexpected refs %+v", refs)
	}
	if _, err := parsePracticeRefs([]string{"=nameless"}); err == nil {
		t.Fatal("expected missing id to be rejected")
	}
}

func TestDoctorReportsChecks(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"doctor", "--skip-providers"}, env.configPath)
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	requireContains(t, out, "Data directory")
	requireContains(t, out, "No generation provider")
}
