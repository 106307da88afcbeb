package command

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/cryptobot/internal/i18n"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name    string
		text    string
		bot     string
		want    Command
		wantErr error
	}{
		{name: "help", text: "/help", want: Command{Kind: KindHelp}},
		{name: "help upper case", text: "/HELP", want: Command{Kind: KindHelp}},
		{name: "price", text: "/price bitcoin", want: Command{Kind: KindPrice, Arg: "bitcoin"}},
		{name: "price mixed case keyword", text: "/Price Bitcoin", want: Command{Kind: KindPrice, Arg: "Bitcoin"}},
		{name: "price extra whitespace", text: "/price \t  ethereum  ", want: Command{Kind: KindPrice, Arg: "ethereum"}},
		{name: "analyze", text: "/analyze dogecoin", want: Command{Kind: KindAnalyze, Arg: "dogecoin"}},
		{name: "bot suffix", text: "/price@CryptoBot bitcoin", bot: "cryptobot", want: Command{Kind: KindPrice, Arg: "bitcoin"}},
		{name: "bot suffix without known username", text: "/help@anything", want: Command{Kind: KindHelp}},
		{name: "other bot", text: "/price@otherbot bitcoin", bot: "cryptobot", wantErr: ErrOtherBot},
		{name: "not a command", text: "hola", wantErr: ErrNotCommand},
		{name: "empty", text: "", wantErr: ErrNotCommand},
		{name: "unknown", text: "/start", wantErr: ErrUnknownCommand},
		{name: "bare slash", text: "/", wantErr: ErrUnknownCommand},
		{name: "legacy fixed command", text: "/ethprice", wantErr: ErrUnknownCommand},
		{name: "price without coin", text: "/price", wantErr: ErrMissingArgument},
		{name: "analyze blank coin", text: "/analyze   ", wantErr: ErrMissingArgument},
		{name: "help with argument", text: "/help price", wantErr: ErrTooManyArguments},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.text, tc.bot)
			if tc.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tc.wantErr)

				var parseErr *ParseError
				require.True(t, errors.As(err, &parseErr))
				assert.Equal(t, tc.text, parseErr.Input)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCommand_Coin(t *testing.T) {
	assert.Equal(t, CoinID("bitcoin"), Command{Kind: KindPrice, Arg: " BitCoin "}.Coin())
	assert.Equal(t, CoinID("bitcoin"), NormalizeCoin("BITCOIN"))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "help", KindHelp.String())
	assert.Equal(t, "price", KindPrice.String())
	assert.Equal(t, "analyze", KindAnalyze.String())
	assert.Equal(t, "unknown", Kind(0).String())
}

func TestDescriptions_OneLinePerCommand(t *testing.T) {
	m, err := i18n.Load("es")
	require.NoError(t, err)

	listing := Descriptions(m.Default())
	lines := strings.Split(listing, "\n")

	require.Len(t, lines, len(Specs())+1)
	assert.Equal(t, "Estos son los comandos disponibles:", lines[0])

	var commandLines []string
	for _, line := range lines {
		if strings.HasPrefix(line, "/") {
			commandLines = append(commandLines, line)
		}
	}
	require.Len(t, commandLines, 3)
	assert.True(t, strings.HasPrefix(commandLines[0], "/help - "))
	assert.True(t, strings.HasPrefix(commandLines[1], "/price <moneda> - "))
	assert.True(t, strings.HasPrefix(commandLines[2], "/analyze <moneda> - "))

	for _, name := range []string{"help", "price", "analyze"} {
		assert.Contains(t, listing, name)
	}

	assert.Equal(t, listing, Descriptions(m.Default()), "listing must be deterministic")
}

func TestDescriptions_EveryCommandIsParseable(t *testing.T) {
	for _, s := range Specs() {
		text := "/" + s.Name
		if s.Arity == CoinArgument {
			text += " bitcoin"
		}

		cmd, err := Parse(text, "")
		require.NoError(t, err, text)
		assert.Equal(t, s.Kind, cmd.Kind)
	}
}

func TestSpecs_ReturnsCopy(t *testing.T) {
	got := Specs()
	got[0].Name = "changed"

	assert.Equal(t, "help", Specs()[0].Name)
}
