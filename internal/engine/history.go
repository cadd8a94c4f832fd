package engine

import "github.com/pocketcalc/pcalc/pkg/types"

// MaxHistory は保持する履歴の最大件数
const MaxHistory = 50

// History は新しい順に並んだ上限付きの計算履歴
type History struct {
	entries []types.HistoryEntry
	limit   int
}

// NewHistory は外部から与えられた履歴（新しい順）で初期化する
// 上限を超える古いエントリは捨てられる
func NewHistory(limit int, initial []types.HistoryEntry) *History {
	if limit <= 0 {
		limit = MaxHistory
	}
	n := len(initial)
	if n > limit {
		n = limit
	}
	entries := make([]types.HistoryEntry, n, limit)
	copy(entries, initial[:n])
	return &History{entries: entries, limit: limit}
}

// Add はエントリを先頭に追加し、上限を超えた最古のものを捨てる
func (h *History) Add(entry types.HistoryEntry) {
	h.entries = append(h.entries, types.HistoryEntry{})
	copy(h.entries[1:], h.entries)
	h.entries[0] = entry
	if len(h.entries) > h.limit {
		h.entries = h.entries[:h.limit]
	}
}

// Entries は履歴のコピーを返す
func (h *History) Entries() []types.HistoryEntry {
	out := make([]types.HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len は現在の件数を返す
func (h *History) Len() int {
	return len(h.entries)
}

// Clear はすべてのエントリを削除する
func (h *History) Clear() {
	h.entries = h.entries[:0]
}
