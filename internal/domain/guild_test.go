package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuildIDValidate(t *testing.T) {
	assert.ErrorIs(t, GuildID("").Validate(), ErrGuildEmpty)
	assert.ErrorIs(t, GuildID(strings.Repeat("1", MaxGuildIDLen+1)).Validate(), ErrGuildTooLong)
	assert.NoError(t, GuildID("81384788765712384").Validate())
}

func TestChannelIDValidate(t *testing.T) {
	assert.ErrorIs(t, ChannelID("").Validate(), ErrChannelEmpty)
	assert.ErrorIs(t, ChannelID(strings.Repeat("9", MaxChannelIDLen+1)).Validate(), ErrChannelTooLong)
	assert.NoError(t, ChannelID("voice-42").Validate())
}

func TestChannelIDNull(t *testing.T) {
	assert.True(t, ChannelID("").IsNull())
	assert.Equal(t, "null", ChannelID("").String())
	assert.False(t, ChannelID("voice-42").IsNull())
	assert.Equal(t, "voice-42", ChannelID("voice-42").String())
}

func TestStageText(t *testing.T) {
	assert.Equal(t, "CONNECT", StageConnect.String())
	assert.Equal(t, "Stage(42)", Stage(42).String())
	assert.False(t, StageIdle.Pending())
	assert.True(t, StageDisconnect.Pending())

	b, err := json.Marshal(map[string]Stage{"stage": StageReconnect})
	require.NoError(t, err)
	assert.JSONEq(t, `{"stage":"RECONNECT"}`, string(b))
}

func TestStageTextRoundTrip(t *testing.T) {
	for _, stage := range []Stage{StageIdle, StageConnect, StageReconnect, StageDisconnect} {
		b, err := json.Marshal(stage)
		require.NoError(t, err)

		var back Stage
		require.NoError(t, json.Unmarshal(b, &back))
		assert.Equal(t, stage, back)
	}

	var s Stage
	assert.Error(t, json.Unmarshal([]byte(`"JOINING"`), &s))
	assert.Error(t, json.Unmarshal([]byte(`"Stage(42)"`), &s))
}
