package config

import (
	"log/slog"
	"sync"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfighcl"
)

type Config struct {
	ListenAddr        string        `hcl:"listen_addr" env:"LISTEN_ADDR" default:":8080"`
	AdminUserID       string        `hcl:"admin_user_id" env:"ADMIN_USER_ID" required:"true"`
	AdminPasswordHash string        `hcl:"admin_password_hash" env:"ADMIN_PASSWORD_HASH" required:"true"`
	TokenSigningKey   string        `hcl:"token_signing_key" env:"TOKEN_SIGNING_KEY" required:"true"`
	TokenTTL          time.Duration `hcl:"token_ttl" env:"TOKEN_TTL" default:"60m"`
	SweepInterval     time.Duration `hcl:"sweep_interval" env:"SWEEP_INTERVAL" default:"60s"`
	SnapshotPath      string        `hcl:"snapshot_path" env:"SNAPSHOT_PATH" default:"data/articles.json"`
}

var (
	cfg  Config
	once sync.Once
)

func Get() Config {
	once.Do(func() {
		loader := aconfig.LoaderFor(&cfg, aconfig.Config{
			EnvPrefix: "AK",
			Files:     []string{"./config.hcl", "./config.local.hcl", "$HOME/.config/articleKeeper/config.hcl"},
			FileDecoders: map[string]aconfig.FileDecoder{
				".hcl": aconfighcl.New(),
			},
		})

		if err := loader.Load(); err != nil {
			slog.Error("failed to load config", "err", err)
		}
	})

	return cfg
}
