package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meikuraledutech/botdag"
	"github.com/meikuraledutech/botdag/form"
	"github.com/meikuraledutech/botdag/memory"
	"github.com/meikuraledutech/botdag/postgres"
)

func main() {
	ctx := context.Background()

	// Wire up postgres when DATABASE_URL is set, otherwise keep bots in memory.
	var store botdag.Store = memory.New()
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		pool, err := pgxpool.New(ctx, dbURL)
		if err != nil {
			log.Fatalf("connect: %v", err)
		}
		defer pool.Close()
		store = postgres.New(pool)
	}

	// 1. Create tables
	if err := store.CreateSchema(ctx); err != nil {
		log.Fatalf("schema: %v", err)
	}
	fmt.Println("schema created")

	// ── Build the editor graph ────────────────────────────────────────
	model := botdag.Component{
		ID:   "openai-chat",
		Type: "models",
		Name: "OpenAI Chat",
		Fields: []botdag.Field{
			{Name: "temperature", Type: json.RawMessage(`"number"`)},
			{Name: "openai_api_key", Type: json.RawMessage(`"string"`), Password: true},
			{Name: "prompt", Type: json.RawMessage(`"string"`)},
		},
		Outputs: []botdag.Output{{Name: "reply"}},
	}
	prompt := botdag.Component{
		ID:   "prompt",
		Type: "programatic_actions",
		Name: "Prompt",
		Fields: []botdag.Field{
			{Name: "message", Type: json.RawMessage(`"string"`)},
			{Name: "template", Type: json.RawMessage(`"string"`)},
		},
		Outputs: []botdag.Output{{Name: "prompt"}},
	}

	llm := botdag.NewNode("llm", botdag.Position{X: 400, Y: 120}, model)
	tpl := botdag.NewNode("tpl", botdag.Position{X: 150, Y: 120}, prompt)

	// ── Fill parameters the way the editor form does ──────────────────
	mustSet(&llm, "temperature", "0.7")
	mustSet(&llm, "openai_api_key", "sk-example")
	mustSet(&tpl, "template", "Answer politely: {{message}}")

	nodes := []botdag.Node{{ID: botdag.ChatIn}, tpl, llm, {ID: botdag.ChatOut}}
	edges := []botdag.Edge{
		{ID: "e1", Source: botdag.ChatIn, SourceHandle: "message", Target: "tpl", TargetHandle: "message"},
		{ID: "e2", Source: "tpl", SourceHandle: "prompt", Target: "llm", TargetHandle: "prompt"},
		{ID: "e3", Source: "llm", SourceHandle: "reply", Target: botdag.ChatOut, TargetHandle: "reply"},
	}

	// ── Translate to the backend payload ──────────────────────────────
	d, err := botdag.Translate(nodes, edges)
	if err != nil {
		log.Fatalf("translate: %v", err)
	}
	if err := botdag.ValidateDAG(d); err != nil {
		log.Fatalf("validate: %v", err)
	}
	fmt.Println("\ndag translated:")
	printJSON(d)

	// ── Store it as a bot ─────────────────────────────────────────────
	created, err := store.CreateChatBot(ctx, &botdag.ChatBot{
		Name:      "polite-bot",
		Engine:    botdag.EngineFury,
		DAG:       d,
		CreatedBy: "example",
	})
	if err != nil {
		log.Fatalf("create bot: %v", err)
	}
	fmt.Printf("\nbot created: %s\n", created.ID)

	// ── Rename ────────────────────────────────────────────────────────
	created.Name = "polite-bot-v2"
	if _, err := store.UpdateChatBot(ctx, created, []string{botdag.KeyName}); err != nil {
		log.Fatalf("update bot: %v", err)
	}

	// ── Reload into the editor and check the round trip ───────────────
	got, err := store.GetChatBot(ctx, created.ID)
	if err != nil {
		log.Fatalf("get bot: %v", err)
	}
	reNodes, reEdges := botdag.Reload(got.DAG)
	fmt.Printf("\nreloaded %d nodes, %d edges for %q\n", len(reNodes), len(reEdges), got.Name)

	// ── Cleanup ───────────────────────────────────────────────────────
	if err := store.DeleteChatBot(ctx, created.ID); err != nil {
		log.Fatalf("delete: %v", err)
	}
	fmt.Println("\nbot deleted")
}

func mustSet(n *botdag.Node, name, raw string) {
	if err := form.Set(n, name, raw); err != nil {
		log.Fatalf("set %s.%s: %v", n.ID, name, err)
	}
}

func printJSON(v any) {
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(out))
}
