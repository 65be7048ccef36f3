package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lazypower/hearth/internal/client"
)

// --- status command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the soul and the village link",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	c := client.New()
	if !c.Healthy() {
		return fmt.Errorf("hearth daemon is not running (try: hearth serve)")
	}

	r, err := c.Status()
	if err != nil {
		return fmt.Errorf("status: %w", err)
	}

	fmt.Printf("%s is %s (%s)\n", r.Agent, r.State, r.Expression)
	fmt.Printf("  E: %.3f  floor: %.3f  peak: %.3f\n", r.E, r.EFloor, r.EPeak)
	fmt.Printf("  together %.1f days, %d interactions, %.1f total care\n",
		r.DaysTogether, r.Interactions, r.TotalCare)
	fmt.Printf("  traits: curiosity %.2f, playfulness %.2f, wisdom %.2f\n",
		r.Curiosity, r.Playfulness, r.Wisdom)
	for _, ct := range r.CareTotals {
		fmt.Printf("  %s: %d times (%.1f total)\n", ct.Kind, ct.Count, ct.Intensity)
	}

	switch {
	case !r.Cloud.Configured:
		fmt.Println("  village: not paired")
	case r.Cloud.Offline:
		fmt.Printf("  village: offline (%d failures, backoff %.0fs)\n",
			r.Cloud.Failures, r.Cloud.BackoffSecs)
	case !r.Cloud.TokenValid:
		fmt.Println("  village: token revoked, re-pair the device")
	case !r.Cloud.BillingOK:
		fmt.Printf("  village: message limit reached (%d/%d)\n",
			r.Cloud.MessagesUsed, r.Cloud.MessagesLimit)
	default:
		fmt.Println("  village: connected")
	}
	if r.Queue.Pending > 0 {
		fmt.Printf("  %d offline exchanges waiting for the next sync\n", r.Queue.Pending)
	}
	if r.Queue.Archived > 0 {
		fmt.Printf("  %d offline exchanges archived for review\n", r.Queue.Archived)
	}
	if r.Cloud.MOTD != "" {
		fmt.Printf("  motd: %s\n", r.Cloud.MOTD)
	}
	return nil
}

// --- care command ---

var careCmd = &cobra.Command{
	Use:   "care [love|poke]",
	Short: "Give the soul some attention",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCare,
}

func runCare(cmd *cobra.Command, args []string) error {
	kind := "love"
	if len(args) > 0 {
		kind = args[0]
	}

	res, err := client.New().Care(kind)
	if err != nil {
		return fmt.Errorf("care: %w", err)
	}
	fmt.Printf("%s: %s\n", res.Agent, res.Reply)
	fmt.Printf("  E: %.3f (%s)\n", res.E, res.State)
	return nil
}

// --- chat command ---

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Talk with the companion",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	message := strings.Join(args, " ")

	res, err := client.New().Chat(message)
	if err != nil {
		return fmt.Errorf("chat: %w", err)
	}
	fmt.Printf("%s: %s\n", res.Agent, res.Reply)
	if res.Offline {
		fmt.Println("  (answered locally, the village is out of reach)")
	}
	return nil
}

// --- sync command ---

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push the soul to the village now",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := client.New().Sync()
		if err != nil {
			return fmt.Errorf("sync: %w", err)
		}
		var res struct {
			E     float64 `json:"e"`
			Syncs uint32  `json:"syncs"`
			MOTD  string  `json:"motd"`
		}
		if err := json.Unmarshal(data, &res); err != nil {
			return fmt.Errorf("decode sync: %w", err)
		}
		fmt.Printf("synced (E %.3f, %d total syncs)\n", res.E, res.Syncs)
		if res.MOTD != "" {
			fmt.Printf("  motd: %s\n", res.MOTD)
		}
		return nil
	},
}

// --- personas command ---

var personaName string

var personasCmd = &cobra.Command{
	Use:   "personas",
	Short: "List or choose companion personas",
	RunE:  runPersonas,
}

func init() {
	personasCmd.Flags().StringVar(&personaName, "choose", "", "Switch to the named persona")
}

func runPersonas(cmd *cobra.Command, args []string) error {
	c := client.New()

	if personaName != "" {
		body, _ := json.Marshal(map[string]string{"name": personaName})
		data, err := c.Post("/api/personas", body)
		if err != nil {
			return fmt.Errorf("choose persona: %w", err)
		}
		var res struct {
			Active string `json:"active"`
		}
		json.Unmarshal(data, &res)
		fmt.Printf("now living with %s\n", res.Active)
		return nil
	}

	data, err := c.Get("/api/personas")
	if err != nil {
		return fmt.Errorf("personas: %w", err)
	}
	var res struct {
		Personas []string `json:"personas"`
		Active   string   `json:"active"`
	}
	if err := json.Unmarshal(data, &res); err != nil {
		return fmt.Errorf("decode personas: %w", err)
	}
	for _, p := range res.Personas {
		marker := "  "
		if strings.EqualFold(p, res.Active) {
			marker = "* "
		}
		fmt.Printf("%s%s\n", marker, p)
	}
	return nil
}

// --- queue command ---

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Show exchanges handled while the village was unreachable",
	RunE:  runQueue,
}

func runQueue(cmd *cobra.Command, args []string) error {
	data, err := client.New().Get("/api/queue")
	if err != nil {
		return fmt.Errorf("queue: %w", err)
	}

	var res struct {
		Pending  int    `json:"pending"`
		Capacity int    `json:"capacity"`
		Summary  string `json:"summary"`
		Entries  []struct {
			Timestamp string  `json:"timestamp"`
			Input     string  `json:"input"`
			Output    string  `json:"output"`
			E         float64 `json:"e"`
			State     string  `json:"state"`
			Quality   string  `json:"quality"`
		} `json:"entries"`
	}
	if err := json.Unmarshal(data, &res); err != nil {
		return fmt.Errorf("decode queue: %w", err)
	}

	if res.Pending == 0 {
		fmt.Println("Nothing waiting; every exchange reached the village.")
		return nil
	}

	fmt.Printf("%d of %d queued for the next sync\n\n", res.Pending, res.Capacity)
	for _, e := range res.Entries {
		when := e.Timestamp
		if ts, err := time.Parse(time.RFC3339, e.Timestamp); err == nil {
			when = ts.Format("Jan 2 15:04")
		}
		fmt.Printf("  [%s] (%s, E %.2f, %s)\n", when, e.State, e.E, e.Quality)
		fmt.Printf("    > %s\n", e.Input)
		fmt.Printf("    < %s\n", e.Output)
	}
	if res.Summary != "" {
		fmt.Printf("\n%s\n", res.Summary)
	}
	return nil
}

// --- reset command ---

var resetConfirm bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Factory-reset the soul",
	Long:  "Abandon the current soul and start over with a newborn. The floor, the history, everything earned is lost. There is no undo.",
	RunE:  runReset,
}

func init() {
	resetCmd.Flags().BoolVar(&resetConfirm, "yes", false, "Skip the confirmation")
}

func runReset(cmd *cobra.Command, args []string) error {
	if !resetConfirm {
		return fmt.Errorf("this erases the soul permanently; re-run with --yes if you mean it")
	}

	data, err := client.New().Post("/api/reset", []byte("{}"))
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	var res struct {
		E float64 `json:"e"`
	}
	json.Unmarshal(data, &res)
	fmt.Printf("a new soul wakes (E %.1f)\n", res.E)
	return nil
}
