package session

import (
	"github.com/pocketcalc/pcalc/pkg/types"
)

// View はホストに返す表示用の状態
type View struct {
	SessionID  string               `json:"session_id"`
	Display    string               `json:"display"`
	Expression string               `json:"expression"`
	History    []types.HistoryEntry `json:"history"`
	AngleMode  types.AngleMode      `json:"angle_mode"`
	Theme      string               `json:"theme"`
	Scientific bool                 `json:"scientific"`
	Error      string               `json:"error,omitempty"`
}

// View は現在の表示状態を返す。err があればメッセージを含める
func (s *Session) View(err error) View {
	v := View{
		SessionID:  s.id,
		Display:    s.engine.DisplayText(),
		Expression: s.engine.Expression(),
		History:    s.engine.History(),
		AngleMode:  s.engine.AngleMode(),
		Theme:      s.theme,
		Scientific: s.scientific,
	}
	if err != nil {
		v.Error = err.Error()
	}
	return v
}
