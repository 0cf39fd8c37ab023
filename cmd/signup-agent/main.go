package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/keremvatan/go-mobile-signup-agent/internal/api"
	"github.com/keremvatan/go-mobile-signup-agent/internal/config"
	"github.com/keremvatan/go-mobile-signup-agent/internal/driver"
	"github.com/keremvatan/go-mobile-signup-agent/internal/llm"
	"github.com/keremvatan/go-mobile-signup-agent/internal/store"
	"github.com/keremvatan/go-mobile-signup-agent/internal/workflow"
)

func main() {
	mode := flag.String("mode", "demo", "run mode: manual | demo | serve")
	firstName := flag.String("first-name", "", "first name (manual mode)")
	lastName := flag.String("last-name", "", "last name (manual mode)")
	dob := flag.String("dob", "", "date of birth YYYY-MM-DD (manual mode)")
	configPath := flag.String("config", "", "path to YAML config file")
	budget := flag.Int("budget", 0, "override action budget")
	noLLM := flag.Bool("no-llm", false, "disable the adaptive advisor")
	backend := flag.String("driver", "", "override driver backend: uiautomator2 | chrome")
	flag.Parse()

	// .env is optional, real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *budget > 0 {
		cfg.Run.MaxActions = *budget
	}
	if *noLLM {
		cfg.LLM.Enabled = false
	}
	if *backend != "" {
		cfg.Driver.Backend = *backend
	}

	printBanner(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch *mode {
	case "manual":
		if *firstName == "" || *lastName == "" || *dob == "" {
			log.Fatal("manual mode requires -first-name, -last-name and -dob")
		}
		acc, err := workflow.GenerateAccount(*firstName, *lastName, *dob)
		if err != nil {
			log.Fatalf("account: %v", err)
		}
		runOnce(ctx, cfg, acc)

	case "demo":
		runOnce(ctx, cfg, workflow.DemoAccount())

	case "serve":
		serve(ctx, cfg)

	default:
		log.Fatalf("unknown mode %q (expected manual, demo or serve)", *mode)
	}
}

func printBanner(cfg config.Config) {
	fmt.Println("📱 Mobile Signup Agent")
	fmt.Println(strings.Repeat("=", 65))
	fmt.Printf("🔧 Driver: %s\n", cfg.Driver.Backend)
	llmStatus := "enabled"
	if !cfg.LLM.Enabled {
		llmStatus = "disabled"
	}
	fmt.Printf("🧠 Adaptive advisor: %s\n", llmStatus)
	fmt.Printf("💰 Action budget: %d\n", cfg.Run.MaxActions)
	fmt.Println(strings.Repeat("=", 65))
}

func openSession(ctx context.Context, cfg config.Config) (driver.Session, error) {
	switch cfg.Driver.Backend {
	case "chrome":
		return driver.NewChromeSession(ctx, driver.ChromeConfig{
			StartURL: cfg.Driver.StartURL,
			Headless: cfg.Driver.Headless,
		})
	case "uiautomator2", "":
		return driver.NewUiAutoSession(ctx, driver.UiAutoConfig{
			ServerURL:   cfg.Driver.ServerURL,
			AppPackage:  cfg.Driver.AppPackage,
			AppActivity: cfg.Driver.AppActivity,
		})
	}
	return nil, fmt.Errorf("unknown driver backend %q", cfg.Driver.Backend)
}

// buildEngine assembles the engine stack for one run.
func buildEngine(cfg config.Config, session driver.Session, reporter *workflow.Reporter, recorder workflow.ActionRecorder) *workflow.Engine {
	var advisor workflow.Advisor
	var assessor workflow.Assessor
	if cfg.LLM.Enabled {
		client, err := llm.NewClient(cfg.LLM.Model, cfg.LLM.BaseURL)
		if err != nil {
			log.Printf("⚠️ advisor disabled: %v", err)
		} else {
			advisor = llm.NewAdvisor(client)
			assessor = llm.NewScreenReader(session, client)
		}
	}

	exec := workflow.NewExecutor(session, assessor)
	exec.SetTimings(
		time.Duration(cfg.Run.SettleMs)*time.Millisecond,
		time.Duration(cfg.Run.AuthWaitSeconds)*time.Second,
		time.Duration(cfg.Run.PostAuthBudgetSeconds)*time.Second,
	)
	ctrl := workflow.NewController(cfg.Run.MaxActions, advisor)
	return workflow.NewEngine(session, exec, ctrl, reporter, recorder)
}

func runOnce(ctx context.Context, cfg config.Config, acc workflow.Account) {
	runStore, err := store.NewRunStore(cfg.Store.Path)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer runStore.Close()

	runID, err := runStore.CreateRun(acc.Email)
	if err != nil {
		log.Fatalf("store: %v", err)
	}

	session, err := openSession(ctx, cfg)
	if err != nil {
		log.Fatalf("session: %v", err)
	}

	engine := buildEngine(cfg, session, workflow.NewReporter(), runStore.Recorder(runID))
	sum, runErr := engine.Run(ctx, workflow.NewRunState(acc))

	if err := runStore.FinishRun(runID, sum); err != nil {
		log.Printf("⚠️ store: %v", err)
	}
	if runErr != nil && !errors.Is(runErr, workflow.ErrInterrupted) {
		os.Exit(1)
	}
}

func serve(ctx context.Context, cfg config.Config) {
	runStore, err := store.NewRunStore(cfg.Store.Path)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer runStore.Close()

	launcher := func(runID int64, acc workflow.Account) {
		session, err := openSession(ctx, cfg)
		if err != nil {
			log.Printf("run %d: session: %v", runID, err)
			_ = runStore.FinishRun(runID, workflow.Summary{
				Step:         workflow.StepError,
				ErrorMessage: fmt.Sprintf("session setup: %v", err),
				AccountEmail: acc.Email,
			})
			return
		}
		engine := buildEngine(cfg, session, workflow.NewQuietReporter(), runStore.Recorder(runID))
		sum, _ := engine.Run(ctx, workflow.NewRunState(acc))
		if err := runStore.FinishRun(runID, sum); err != nil {
			log.Printf("run %d: store: %v", runID, err)
		}
	}

	server := api.NewServer(runStore, launcher)
	go func() {
		<-ctx.Done()
		log.Println("shutting down")
		os.Exit(0)
	}()
	if err := server.ListenAndServe(cfg.API.Addr); err != nil {
		log.Fatalf("api: %v", err)
	}
}
