package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func card(agentID string, total, days int) AgentScorecard {
	return AgentScorecard{AgentID: agentID, TotalCount: total, ItemCount: total, DaysWorked: days}
}

func TestPartition(t *testing.T) {
	t.Run("splits into disjoint covering sets", func(t *testing.T) {
		cards := []AgentScorecard{
			card("alice", 100, 10),
			card("bob", 3, 1),
			card("carol", 80, 9),
			card("dave", 0, 0),
		}

		cohort := Partition(cards, QualificationRule{MinTotalCount: 10}, PartitionConfig{
			ExemptAgentIDs: map[string]struct{}{"carol": {}},
		})

		require.Len(t, cohort.Competitive, 1)
		assert.Equal(t, "alice", cohort.Competitive[0].AgentID)
		assert.True(t, cohort.Competitive[0].IsQualified)

		require.Len(t, cohort.Exempt, 1)
		assert.Equal(t, "carol", cohort.Exempt[0].AgentID)
		assert.True(t, cohort.Exempt[0].IsExempt)

		require.Len(t, cohort.Unqualified, 2)
		assert.Equal(t, "bob", cohort.Unqualified[0].AgentID)
		assert.Equal(t, "dave", cohort.Unqualified[1].AgentID)

		total := len(cohort.Competitive) + len(cohort.Exempt) + len(cohort.Unqualified)
		assert.Equal(t, len(cards), total)
	})

	t.Run("exemption wins over qualification", func(t *testing.T) {
		cohort := Partition([]AgentScorecard{card("carol", 1000, 30)},
			QualificationRule{MinTotalCount: 10},
			PartitionConfig{ExemptAgentIDs: map[string]struct{}{"carol": {}}})

		assert.Empty(t, cohort.Competitive)
		require.Len(t, cohort.Exempt, 1)
	})

	t.Run("min days worked rule", func(t *testing.T) {
		cohort := Partition([]AgentScorecard{
			card("alice", 40, 5),
			card("bob", 40, 2),
		}, QualificationRule{MinDaysWorked: 3}, PartitionConfig{})

		require.Len(t, cohort.Competitive, 1)
		assert.Equal(t, "alice", cohort.Competitive[0].AgentID)
		require.Len(t, cohort.Unqualified, 1)
		assert.Equal(t, "bob", cohort.Unqualified[0].AgentID)
	})

	t.Run("no minimum still requires any activity", func(t *testing.T) {
		cohort := Partition([]AgentScorecard{
			card("alice", 1, 1),
			card("bob", 0, 0),
		}, QualificationRule{}, PartitionConfig{})

		require.Len(t, cohort.Competitive, 1)
		require.Len(t, cohort.Unqualified, 1)
	})

	t.Run("restricted-only agents without board activity are excluded entirely", func(t *testing.T) {
		restricted := card("dave", 50, 8)
		restricted.RestrictedItemCount = 50
		cards := []AgentScorecard{
			card("alice", 20, 4),
			restricted,
		}

		cohort := Partition(cards, QualificationRule{}, PartitionConfig{
			RestrictedOnly: map[string]struct{}{"dave": {}},
		})

		require.Len(t, cohort.Competitive, 1)
		assert.Equal(t, "alice", cohort.Competitive[0].AgentID)
		assert.Empty(t, cohort.Exempt)
		assert.Empty(t, cohort.Unqualified)
	})

	t.Run("restricted-only agents with board activity stay", func(t *testing.T) {
		restricted := card("dave", 50, 8)
		restricted.RestrictedItemCount = 50
		restricted.ExternalCount = 30

		cohort := Partition([]AgentScorecard{restricted}, QualificationRule{}, PartitionConfig{
			RestrictedOnly: map[string]struct{}{"dave": {}},
		})

		require.Len(t, cohort.Competitive, 1)
	})

	t.Run("restricted-only agents with general work stay", func(t *testing.T) {
		restricted := card("dave", 50, 8)
		restricted.RestrictedItemCount = 49

		cohort := Partition([]AgentScorecard{restricted}, QualificationRule{}, PartitionConfig{
			RestrictedOnly: map[string]struct{}{"dave": {}},
		})

		require.Len(t, cohort.Competitive, 1)
	})

	t.Run("output order is deterministic regardless of input order", func(t *testing.T) {
		forward := Partition([]AgentScorecard{card("alice", 5, 1), card("bob", 5, 1)}, QualificationRule{}, PartitionConfig{})
		reversed := Partition([]AgentScorecard{card("bob", 5, 1), card("alice", 5, 1)}, QualificationRule{}, PartitionConfig{})

		assert.Equal(t, forward, reversed)
	})

	t.Run("empty input yields empty cohort", func(t *testing.T) {
		cohort := Partition(nil, QualificationRule{MinTotalCount: 10}, PartitionConfig{})
		assert.Empty(t, cohort.Competitive)
		assert.Empty(t, cohort.Exempt)
		assert.Empty(t, cohort.Unqualified)
	})
}
