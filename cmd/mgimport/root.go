package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/memgraph/mgconsole/internal/config"
)

// bindConfigFlags registers every flag from the CLI surface on cmd,
// defaulted from config.Defaults so an unset flag never masks a value
// loaded from .env, MGIMPORT_* environment variables, or an HCL file.
func bindConfigFlags(cmd *cobra.Command) {
	d := config.Defaults()
	f := cmd.Flags()

	f.String("host", d.Host, "graph server host")
	f.Int("port", d.Port, "Bolt port")
	f.String("username", d.Username, "Bolt basic auth username")
	f.String("password", d.Password, "Bolt basic auth password")
	f.Bool("use-ssl", d.UseSSL, "use bolt+s:// instead of bolt://")

	f.Int("batch-size", d.BatchSize, "queries per parallel-lane batch")
	f.Int("workers-number", d.WorkersNumber, "worker pool size / max concurrent batches")
	f.Int("max-attempts", d.MaxAttempts, "attempts before a batch is treated as a fatal failure")

	f.String("source", d.Source, `statement source: "-" (stdin), a file path, s3://bucket/prefix, minio://bucket/prefix, or watch://dir`)

	f.String("oidc-issuer", d.OIDCIssuer, "OIDC issuer URL; enables client-credentials bearer auth")
	f.String("oidc-client-id", d.OIDCClientID, "OIDC client ID")
	f.String("oidc-client-secret", d.OIDCClientSecret, "OIDC client secret")

	f.String("status-addr", d.StatusAddr, "address to serve /healthz, /progress, /ws on; empty disables")
	f.String("publish-valkey", d.PublishValkey, "Valkey address to XADD progress events to; empty disables")
	f.Bool("lock", d.Lock, "acquire the Valkey run lock before importing")
	f.String("lock-addr", d.LockAddr, "Valkey address for the run lock, if different from --publish-valkey")

	f.String("config", "", "optional HCL config file; flags still override it")
	f.String("env-file", ".env", "optional .env file to load before reading MGIMPORT_* variables")
}

// loadConfig resolves the layered configuration: defaults, then .env,
// then MGIMPORT_* environment variables, then an optional HCL file, then
// any flag the caller actually set — in that increasing precedence order.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	if err := config.LoadDotEnv(envFile); err != nil {
		return config.Config{}, err
	}

	cfg := config.FromEnv(config.Defaults())

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		var err error
		cfg, err = config.FromHCLFile(path, cfg)
		if err != nil {
			return config.Config{}, err
		}
	}

	f := cmd.Flags()
	applyString(f, "host", &cfg.Host)
	applyInt(f, "port", &cfg.Port)
	applyString(f, "username", &cfg.Username)
	applyString(f, "password", &cfg.Password)
	applyBool(f, "use-ssl", &cfg.UseSSL)
	applyInt(f, "batch-size", &cfg.BatchSize)
	applyInt(f, "workers-number", &cfg.WorkersNumber)
	applyInt(f, "max-attempts", &cfg.MaxAttempts)
	applyString(f, "source", &cfg.Source)
	applyString(f, "oidc-issuer", &cfg.OIDCIssuer)
	applyString(f, "oidc-client-id", &cfg.OIDCClientID)
	applyString(f, "oidc-client-secret", &cfg.OIDCClientSecret)
	applyString(f, "status-addr", &cfg.StatusAddr)
	applyString(f, "publish-valkey", &cfg.PublishValkey)
	applyBool(f, "lock", &cfg.Lock)
	applyString(f, "lock-addr", &cfg.LockAddr)

	if cfg.LockAddr == "" {
		cfg.LockAddr = cfg.PublishValkey
	}
	return cfg, nil
}

// applyString/applyInt/applyBool overlay a flag's value onto dst only if
// the caller actually set it, preserving the config layer beneath.
func applyString(f *pflag.FlagSet, name string, dst *string) {
	if f.Changed(name) {
		*dst, _ = f.GetString(name)
	}
}

func applyInt(f *pflag.FlagSet, name string, dst *int) {
	if f.Changed(name) {
		*dst, _ = f.GetInt(name)
	}
}

func applyBool(f *pflag.FlagSet, name string, dst *bool) {
	if f.Changed(name) {
		*dst, _ = f.GetBool(name)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mgimport",
		Short: "Batched, phase-ordered, bounded-concurrency importer for graph statement streams",
		Long: `mgimport drains a stream of Cypher/openCypher statements — from stdin, a
file, an S3 or MinIO bucket, or a watched directory — into a Bolt-speaking
graph server. Statements are classified into pre/vertex/edge/post lanes per
window and the vertex/edge lanes run as concurrent batches across a fixed
worker pool, with per-batch retry and session replacement on failure.`,
	}

	runCmd := newRunCmd()
	bindConfigFlags(runCmd)
	root.AddCommand(runCmd)

	serialCmd := newSerialCmd()
	bindConfigFlags(serialCmd)
	root.AddCommand(serialCmd)

	classifyCmd := newClassifyCmd()
	classifyCmd.Flags().String("source", "-", `statement source: "-" (stdin), a file path, s3://bucket/prefix, minio://bucket/prefix, or watch://dir`)
	root.AddCommand(classifyCmd)

	return root
}
