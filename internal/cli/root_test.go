package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "tjadmin", cmd.Use)
	assert.Contains(t, cmd.Long, "order")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"order", "cancel", "inventory", "closure", "catalog", "report"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestOrderSubcommands(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"create", "add", "remove", "send", "dispatch", "bill", "pay", "show"} {
		subCmd, _, err := cmd.Find([]string{"order", name})
		require.NoError(t, err, "order %s should exist", name)
		assert.Equal(t, name, subCmd.Name())
	}
}

func TestCancelSubcommands(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"request", "request-order", "approve", "reject", "dismiss", "list"} {
		subCmd, _, err := cmd.Find([]string{"cancel", name})
		require.NoError(t, err, "cancel %s should exist", name)
		assert.Equal(t, name, subCmd.Name())
	}
}

func TestReportSubcommands(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"orders", "tickets", "movements"} {
		subCmd, _, err := cmd.Find([]string{"report", name})
		require.NoError(t, err, "report %s should exist", name)
		assert.Equal(t, name, subCmd.Name())

		for _, flag := range []string{"from", "to"} {
			require.NotNil(t, subCmd.Flags().Lookup(flag), "report %s needs --%s", name, flag)
		}
	}
}

func TestParseRange(t *testing.T) {
	start, end, err := parseRange("2024-06-01", "2024-06-02", "UTC")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), end)

	_, _, err = parseRange("junio", "2024-06-02", "UTC")
	require.Error(t, err)

	_, _, err = parseRange("2024-06-01", "2024-06-02", "Mars/Olympus")
	require.Error(t, err)
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "tjadmin.yaml", configFlag.DefValue)

	roleFlag := cmd.PersistentFlags().Lookup("role")
	require.NotNil(t, roleFlag)
	assert.Equal(t, "mesero", roleFlag.DefValue)
}

func TestOrderCreateFlags(t *testing.T) {
	cmd := NewRootCommand()
	createCmd, _, err := cmd.Find([]string{"order", "create"})
	require.NoError(t, err)

	require.NotNil(t, createCmd.Flags().Lookup("mesa"))
	require.NotNil(t, createCmd.Flags().Lookup("mesero"))

	dishFlag := createCmd.Flags().Lookup("dish")
	require.NotNil(t, dishFlag)
	qtyFlag := createCmd.Flags().Lookup("qty")
	require.NotNil(t, qtyFlag)
	assert.Equal(t, "1", qtyFlag.DefValue)
	require.NotNil(t, createCmd.Flags().Lookup("comments"))
}

func TestOrderPayFlags(t *testing.T) {
	cmd := NewRootCommand()
	payCmd, _, err := cmd.Find([]string{"order", "pay"})
	require.NoError(t, err)

	metodoFlag := payCmd.Flags().Lookup("metodo")
	require.NotNil(t, metodoFlag)
	assert.Equal(t, "efectivo", metodoFlag.DefValue)
	require.NotNil(t, payCmd.Flags().Lookup("recibido"))
}

func TestClosureGenerateFlags(t *testing.T) {
	cmd := NewRootCommand()
	genCmd, _, err := cmd.Find([]string{"closure", "generate"})
	require.NoError(t, err)

	forceFlag := genCmd.Flags().Lookup("force")
	require.NotNil(t, forceFlag)
	assert.Equal(t, "false", forceFlag.DefValue)
}

func TestInventoryMoveFlags(t *testing.T) {
	cmd := NewRootCommand()
	moveCmd, _, err := cmd.Find([]string{"inventory", "move"})
	require.NoError(t, err)

	for _, name := range []string{"cantidad", "unidad", "motivo"} {
		require.NotNil(t, moveCmd.Flags().Lookup(name), "flag %s should exist", name)
	}
}

func TestRoleMapping(t *testing.T) {
	for name, want := range map[string]string{
		"admin":       "admin",
		"cajero":      "cajero",
		"mesero":      "mesero",
		"bar":         "bar",
		"cocina":      "cocina",
		"operaciones": "operaciones",
	} {
		role, ok := roleIDs[name]
		require.True(t, ok, "role %s should be mapped", name)
		assert.Equal(t, want, role.String())
	}
}

func TestFormatValidation(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"--format", "invalid", "order", "show", "orden:x"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}
