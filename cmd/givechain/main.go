package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"strings"

	"givechain/config"
	"givechain/core/events"
	"givechain/core/types"
	"givechain/crypto"
	"givechain/native/charity"
	"givechain/observability"
	"givechain/observability/logging"
	"givechain/storage"
)

const defaultConfig = "./config.toml"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "init":
		err = runInit(args)
	case "grant-admin":
		err = runGrantAdmin(args)
	case "create-cause":
		err = runCreateCause(args)
	case "add-milestone":
		err = runAddMilestone(args)
	case "donate":
		err = runDonate(args)
	case "withdraw":
		err = runWithdraw(args)
	case "cause":
		err = runCause(args)
	case "history":
		err = runHistory(args)
	case "profile":
		err = runProfile(args)
	case "score":
		err = runScore(args)
	case "badges":
		err = runBadges(args)
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: givechain <command> [flags]

Commands:
  init           Write a default config file
  grant-admin    Grant the charity admin role to an address
  create-cause   Register a new fundraising cause
  add-milestone  Append a milestone to a cause
  donate         Record a donation against a cause
  withdraw       Withdraw a cause balance to its beneficiary
  cause          Show a cause by name or id
  history        Show a donor's donation history
  profile        Show a donor's lifetime totals, score and badges
  score          Show a donor's impact score
  badges         Show a donor's badge flags`)
}

// node bundles the wired engine with the handles the commands need.
type node struct {
	cfg    *config.Config
	db     storage.Database
	store  *charity.Store
	engine *charity.Engine
	log    *slog.Logger
}

func openNode(configPath string) (*node, error) {
	logger := logging.Setup("givechain", os.Getenv("GIVECHAIN_ENV"))
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	thresholds, err := cfg.TierThresholds()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, err
	}
	db, err := storage.Open(cfg.Backend, cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", cfg.Backend, err)
	}
	store := charity.NewStore(storage.NewKV(db))
	engine := charity.NewEngine()
	engine.SetState(store)
	if err := engine.SetTierThresholds(thresholds); err != nil {
		db.Close()
		return nil, err
	}
	engine.SetEmitter(events.Fanout{
		&eventLogger{log: logger},
		observability.NewCollector(),
	})
	engine.SetPayout(&loggedPayout{log: logger})
	return &node{cfg: cfg, db: db, store: store, engine: engine, log: logger}, nil
}

func (n *node) close() {
	if n != nil && n.db != nil {
		n.db.Close()
	}
}

// eventLogger mirrors every ledger notification into the structured log.
type eventLogger struct {
	log *slog.Logger
}

func (l *eventLogger) Emit(evt events.Event) {
	if l == nil || l.log == nil || evt == nil {
		return
	}
	attrs := make([]any, 0, 8)
	if carrier, ok := evt.(interface{ Event() *types.Event }); ok {
		for k, v := range carrier.Event().Attributes {
			attrs = append(attrs, slog.String(k, v))
		}
	}
	l.log.Info(evt.EventType(), attrs...)
}

// loggedPayout records the payout instruction for out-of-band settlement.
// Actual token movement belongs to the hosting runtime, not this tool.
type loggedPayout struct {
	log *slog.Logger
}

func (p *loggedPayout) Transfer(to [20]byte, amount *big.Int) error {
	addr, err := crypto.NewAddress(to[:])
	if err != nil {
		return err
	}
	p.log.Info("payout instruction issued", "beneficiary", addr.String(), "amount", amount.String())
	return nil
}

func parseAddr(s string) ([20]byte, error) {
	addr, err := crypto.ParseAddress(strings.TrimSpace(s))
	if err != nil {
		return [20]byte{}, err
	}
	var out [20]byte
	copy(out[:], addr.Bytes())
	return out, nil
}

func parseAmount(s string) (*big.Int, error) {
	value, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q (base units expected)", s)
	}
	return value, nil
}

// resolveCause accepts either a 64-character hex identifier or a cause name.
func resolveCause(engine *charity.Engine, ref string) (*charity.Cause, error) {
	trimmed := strings.TrimSpace(ref)
	if len(trimmed) == 64 {
		raw, err := hex.DecodeString(trimmed)
		if err == nil {
			var id [32]byte
			copy(id[:], raw)
			if cause, err := engine.GetCause(id); err == nil {
				return cause, nil
			}
		}
	}
	return engine.GetCauseByName(trimmed)
}

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	configPath := fs.String("config", defaultConfig, "Path to the config file")
	fs.Parse(args)
	if _, err := config.Load(*configPath); err != nil {
		return err
	}
	fmt.Printf("config ready at %s\n", *configPath)
	return nil
}

func runGrantAdmin(args []string) error {
	fs := flag.NewFlagSet("grant-admin", flag.ExitOnError)
	configPath := fs.String("config", defaultConfig, "Path to the config file")
	addr := fs.String("addr", "", "Address to grant the admin role")
	fs.Parse(args)
	n, err := openNode(*configPath)
	if err != nil {
		return err
	}
	defer n.close()
	admin, err := parseAddr(*addr)
	if err != nil {
		return err
	}
	if err := n.store.GrantRole(charity.RoleAdmin, admin); err != nil {
		return err
	}
	fmt.Printf("granted %s to %s\n", charity.RoleAdmin, *addr)
	return nil
}

func runCreateCause(args []string) error {
	fs := flag.NewFlagSet("create-cause", flag.ExitOnError)
	configPath := fs.String("config", defaultConfig, "Path to the config file")
	admin := fs.String("admin", "", "Admin address issuing the command")
	name := fs.String("name", "", "Unique cause name")
	desc := fs.String("desc", "", "Cause description")
	beneficiary := fs.String("beneficiary", "", "Beneficiary address")
	target := fs.String("target", "", "Funding target in base units")
	fs.Parse(args)
	n, err := openNode(*configPath)
	if err != nil {
		return err
	}
	defer n.close()
	caller, err := parseAddr(*admin)
	if err != nil {
		return err
	}
	payee, err := parseAddr(*beneficiary)
	if err != nil {
		return err
	}
	amount, err := parseAmount(*target)
	if err != nil {
		return err
	}
	cause, err := n.engine.CreateCause(caller, *name, *desc, payee, amount)
	if err != nil {
		return err
	}
	fmt.Printf("cause %x created\n", cause.ID)
	return nil
}

func runAddMilestone(args []string) error {
	fs := flag.NewFlagSet("add-milestone", flag.ExitOnError)
	configPath := fs.String("config", defaultConfig, "Path to the config file")
	admin := fs.String("admin", "", "Admin address issuing the command")
	causeRef := fs.String("cause", "", "Cause name or hex id")
	desc := fs.String("desc", "", "Milestone description")
	target := fs.String("target", "", "Milestone target in base units")
	fs.Parse(args)
	n, err := openNode(*configPath)
	if err != nil {
		return err
	}
	defer n.close()
	caller, err := parseAddr(*admin)
	if err != nil {
		return err
	}
	cause, err := resolveCause(n.engine, *causeRef)
	if err != nil {
		return err
	}
	amount, err := parseAmount(*target)
	if err != nil {
		return err
	}
	_, index, err := n.engine.AddMilestone(caller, cause.ID, *desc, amount)
	if err != nil {
		return err
	}
	fmt.Printf("milestone %d added to %s\n", index, cause.Name)
	return nil
}

func runDonate(args []string) error {
	fs := flag.NewFlagSet("donate", flag.ExitOnError)
	configPath := fs.String("config", defaultConfig, "Path to the config file")
	donor := fs.String("donor", "", "Donor address")
	causeRef := fs.String("cause", "", "Cause name or hex id")
	amount := fs.String("amount", "", "Donation in base units")
	fs.Parse(args)
	n, err := openNode(*configPath)
	if err != nil {
		return err
	}
	defer n.close()
	giver, err := parseAddr(*donor)
	if err != nil {
		return err
	}
	cause, err := resolveCause(n.engine, *causeRef)
	if err != nil {
		return err
	}
	value, err := parseAmount(*amount)
	if err != nil {
		return err
	}
	donation, err := n.engine.Donate(giver, cause.ID, value)
	if err != nil {
		return err
	}
	fmt.Printf("donated %s to %s (impact %s)\n", donation.Amount, donation.CauseName, donation.ImpactScore)
	return nil
}

func runWithdraw(args []string) error {
	fs := flag.NewFlagSet("withdraw", flag.ExitOnError)
	configPath := fs.String("config", defaultConfig, "Path to the config file")
	caller := fs.String("caller", "", "Beneficiary address")
	causeRef := fs.String("cause", "", "Cause name or hex id")
	fs.Parse(args)
	n, err := openNode(*configPath)
	if err != nil {
		return err
	}
	defer n.close()
	payee, err := parseAddr(*caller)
	if err != nil {
		return err
	}
	cause, err := resolveCause(n.engine, *causeRef)
	if err != nil {
		return err
	}
	amount, err := n.engine.WithdrawFunds(payee, cause.ID)
	if err != nil {
		return err
	}
	fmt.Printf("withdrew %s from %s\n", amount, cause.Name)
	return nil
}

func runCause(args []string) error {
	fs := flag.NewFlagSet("cause", flag.ExitOnError)
	configPath := fs.String("config", defaultConfig, "Path to the config file")
	causeRef := fs.String("cause", "", "Cause name or hex id")
	fs.Parse(args)
	n, err := openNode(*configPath)
	if err != nil {
		return err
	}
	defer n.close()
	cause, err := resolveCause(n.engine, *causeRef)
	if err != nil {
		return err
	}
	beneficiary, _ := crypto.NewAddress(cause.Beneficiary[:])
	fmt.Printf("cause %x\n  name: %s\n  beneficiary: %s\n  target: %s\n  current: %s\n  donors: %d\n  active: %v\n  target reached: %v\n",
		cause.ID, cause.Name, beneficiary.String(), cause.TargetAmount, cause.CurrentAmount, cause.DonorCount, cause.Active, cause.TargetReached)
	for i, m := range cause.Milestones {
		status := "pending"
		if m.Completed {
			status = fmt.Sprintf("completed at %d", m.CompletedAt)
		}
		fmt.Printf("  milestone %d: %s (target %s) %s\n", i, m.Description, m.TargetAmount, status)
	}
	return nil
}

func runHistory(args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	configPath := fs.String("config", defaultConfig, "Path to the config file")
	donor := fs.String("donor", "", "Donor address")
	fs.Parse(args)
	n, err := openNode(*configPath)
	if err != nil {
		return err
	}
	defer n.close()
	giver, err := parseAddr(*donor)
	if err != nil {
		return err
	}
	donations, err := n.engine.History(giver)
	if err != nil {
		return err
	}
	for _, d := range donations {
		fmt.Printf("%d  %s  %s (impact %s)\n", d.Timestamp, d.CauseName, d.Amount, d.ImpactScore)
	}
	if len(donations) == 0 {
		fmt.Println("no donations recorded")
	}
	return nil
}

func runProfile(args []string) error {
	fs := flag.NewFlagSet("profile", flag.ExitOnError)
	configPath := fs.String("config", defaultConfig, "Path to the config file")
	donor := fs.String("donor", "", "Donor address")
	fs.Parse(args)
	n, err := openNode(*configPath)
	if err != nil {
		return err
	}
	defer n.close()
	giver, err := parseAddr(*donor)
	if err != nil {
		return err
	}
	profile, err := n.engine.Profile(giver)
	if err != nil {
		return err
	}
	fmt.Printf("lifetime total: %s\nimpact score: %s\nbadges: bronze=%v silver=%v gold=%v diamond=%v\n",
		profile.LifetimeTotal, profile.ImpactScore, profile.BronzeBadge, profile.SilverBadge, profile.GoldBadge, profile.DiamondBadge)
	return nil
}

func runScore(args []string) error {
	fs := flag.NewFlagSet("score", flag.ExitOnError)
	configPath := fs.String("config", defaultConfig, "Path to the config file")
	donor := fs.String("donor", "", "Donor address")
	fs.Parse(args)
	n, err := openNode(*configPath)
	if err != nil {
		return err
	}
	defer n.close()
	giver, err := parseAddr(*donor)
	if err != nil {
		return err
	}
	score, err := n.engine.DonorImpactScore(giver)
	if err != nil {
		return err
	}
	fmt.Println(score)
	return nil
}

func runBadges(args []string) error {
	fs := flag.NewFlagSet("badges", flag.ExitOnError)
	configPath := fs.String("config", defaultConfig, "Path to the config file")
	donor := fs.String("donor", "", "Donor address")
	fs.Parse(args)
	n, err := openNode(*configPath)
	if err != nil {
		return err
	}
	defer n.close()
	giver, err := parseAddr(*donor)
	if err != nil {
		return err
	}
	flags, err := n.engine.DonorBadges(giver)
	if err != nil {
		return err
	}
	for _, tier := range []charity.BadgeTier{charity.BadgeTierBronze, charity.BadgeTierSilver, charity.BadgeTierGold, charity.BadgeTierDiamond} {
		fmt.Printf("%s: %v\n", tier, flags[tier])
	}
	return nil
}
