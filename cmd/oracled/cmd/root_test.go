package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/paw-chain/tee-oracle/api"
	"github.com/paw-chain/tee-oracle/app"
	"github.com/paw-chain/tee-oracle/x/oracle/types"
)

func execRoot(t *testing.T, home string, args ...string) (string, error) {
	t.Helper()

	out := &bytes.Buffer{}
	cmd := NewRootCmd()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append(args, "--"+FlagHome, home))

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCmdRegistersSubcommands(t *testing.T) {
	cmd := NewRootCmd()

	for _, name := range []string{"init", "start", "feeder", "token", "export", "query", "tx"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		require.Equal(t, name, sub.Name())
	}
	require.NotNil(t, cmd.PersistentFlags().Lookup(FlagHome))
}

func TestInitWritesConfigAndGenesis(t *testing.T) {
	home := t.TempDir()

	out, err := execRoot(t, home, "init", "owner.near")
	require.NoError(t, err)
	require.Contains(t, out, app.ConfigFileName)

	bz, err := os.ReadFile(filepath.Join(home, app.ConfigDir, app.DefaultGenesisFileName))
	require.NoError(t, err)
	genesis, err := types.GenesisStateFromJSON(bz)
	require.NoError(t, err)
	require.Equal(t, types.DefaultParams(), genesis.Params)

	require.DirExists(t, filepath.Join(home, app.DataDir))

	v, err := app.NewViper(home)
	require.NoError(t, err)
	cfg, err := app.LoadConfig(v, home)
	require.NoError(t, err)
	require.Equal(t, "owner.near", cfg.Owner)

	_, err = execRoot(t, home, "init", "owner.near")
	require.Error(t, err)

	_, err = execRoot(t, home, "init", "other.near", "--overwrite")
	require.NoError(t, err)

	_, err = execRoot(t, home, "init", " ")
	require.Error(t, err)
}

func TestTokenCmd(t *testing.T) {
	home := t.TempDir()
	_, err := execRoot(t, home, "init", "owner.near")
	require.NoError(t, err)

	_, err = execRoot(t, home, "token", "node-1.near")
	require.ErrorContains(t, err, "jwt_secret")

	t.Setenv("ORACLED_API_JWT_SECRET", "s3cret")
	out, err := execRoot(t, home, "token", "node-1.near", "--ttl", "1h")
	require.NoError(t, err)

	auth, err := api.NewAuthService([]byte("s3cret"), app.AppName)
	require.NoError(t, err)
	claims, err := auth.ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	require.Equal(t, "node-1.near", claims.Subject)
	require.NotNil(t, claims.ExpiresAt)
}

func TestExportCmd(t *testing.T) {
	home := t.TempDir()
	_, err := execRoot(t, home, "init", "owner.near")
	require.NoError(t, err)

	genesis := types.DefaultGenesis()
	genesis.Operators = []string{"operator.near"}
	genesis.Assets = []types.Asset{{ID: "BTC", Symbol: "BTC", Name: "Bitcoin", Decimals: 8, Active: true, MinSources: 1}}
	bz, err := json.Marshal(genesis)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(home, app.ConfigDir, app.DefaultGenesisFileName), bz, 0o644))

	t.Setenv("ORACLED_API_JWT_SECRET", "s3cret")
	out, err := execRoot(t, home, "export")
	require.NoError(t, err)

	exported, err := types.GenesisStateFromJSON([]byte(out))
	require.NoError(t, err)
	require.Equal(t, []string{"operator.near"}, exported.Operators)
	require.Len(t, exported.Assets, 1)
	require.Equal(t, "BTC", exported.Assets[0].ID)

	// the store now exists, so a second export reads committed state
	out, err = execRoot(t, home, "export")
	require.NoError(t, err)
	exported, err = types.GenesisStateFromJSON([]byte(out))
	require.NoError(t, err)
	require.Equal(t, []string{"operator.near"}, exported.Operators)
}

func TestStartRejectsInvalidConfig(t *testing.T) {
	home := t.TempDir()
	_, err := execRoot(t, home, "init", "owner.near")
	require.NoError(t, err)

	_, err = execRoot(t, home, "start")
	require.ErrorContains(t, err, "jwt_secret")
}
