package action

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	// ErrMalformedLine marks a line that is not "Kind {json}".
	ErrMalformedLine = errors.New("malformed action line")
	// ErrUnknownKind marks a line whose kind is not registered.
	ErrUnknownKind = errors.New("unknown action kind")
	// ErrGameRequired marks an action with no game name.
	ErrGameRequired = errors.New("action game is required")
)

const maxLineSize = 1 << 20

var decoders = map[Kind]func([]byte) (Action, error){
	KindJoinGame:                      decodeAs[JoinGame],
	KindLeaveGame:                     decodeAs[LeaveGame],
	KindAssignTower:                   decodeAs[AssignTower],
	KindAssignedAllTowers:             decodeAs[AssignedAllTowers],
	KindPickedColor:                   decodeAs[PickedColor],
	KindCreateStartingLegion:          decodeAs[CreateStartingLegion],
	KindSplitLegion:                   decodeAs[SplitLegion],
	KindUndoSplit:                     decodeAs[UndoSplit],
	KindRollMovement:                  decodeAs[RollMovement],
	KindMoveLegion:                    decodeAs[MoveLegion],
	KindUndoMoveLegion:                decodeAs[UndoMoveLegion],
	KindStartFightPhase:               decodeAs[StartFightPhase],
	KindResolvingEngagement:           decodeAs[ResolvingEngagement],
	KindRevealLegion:                  decodeAs[RevealLegion],
	KindFlee:                          decodeAs[Flee],
	KindDoNotFlee:                     decodeAs[DoNotFlee],
	KindConcede:                       decodeAs[Concede],
	KindMakeProposal:                  decodeAs[MakeProposal],
	KindAcceptProposal:                decodeAs[AcceptProposal],
	KindRejectProposal:                decodeAs[RejectProposal],
	KindFight:                         decodeAs[Fight],
	KindStartMusterPhase:              decodeAs[StartMusterPhase],
	KindRecruitCreature:               decodeAs[RecruitCreature],
	KindUndoRecruit:                   decodeAs[UndoRecruit],
	KindDoNotReinforce:                decodeAs[DoNotReinforce],
	KindSummonAngel:                   decodeAs[SummonAngel],
	KindUnSummon:                      decodeAs[UnSummon],
	KindDoNotSummon:                   decodeAs[DoNotSummon],
	KindAcquire:                       decodeAs[Acquire],
	KindDoNotAcquire:                  decodeAs[DoNotAcquire],
	KindStartSplitPhase:               decodeAs[StartSplitPhase],
	KindMoveCreature:                  decodeAs[MoveCreature],
	KindUndoMoveCreature:              decodeAs[UndoMoveCreature],
	KindStartManeuverBattlePhase:      decodeAs[StartManeuverBattlePhase],
	KindStartStrikeBattlePhase:        decodeAs[StartStrikeBattlePhase],
	KindStrike:                        decodeAs[Strike],
	KindCarry:                         decodeAs[Carry],
	KindStartCounterstrikeBattlePhase: decodeAs[StartCounterstrikeBattlePhase],
	KindStartReinforceBattlePhase:     decodeAs[StartReinforceBattlePhase],
	KindBattleOver:                    decodeAs[BattleOver],
	KindEliminatePlayer:               decodeAs[EliminatePlayer],
	KindGameOver:                      decodeAs[GameOver],
	KindWithdraw:                      decodeAs[Withdraw],
	KindPauseAI:                       decodeAs[PauseAI],
	KindResumeAI:                      decodeAs[ResumeAI],
}

func decodeAs[T Action](data []byte) (Action, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// Kinds returns every registered kind.
func Kinds() []Kind {
	out := make([]Kind, 0, len(decoders))
	for k := range decoders {
		out = append(out, k)
	}
	return out
}

// Encode renders a as a single "Kind {json}" line without a newline.
func Encode(a Action) (string, error) {
	if a.GameName() == "" {
		return "", ErrGameRequired
	}
	data, err := json.Marshal(a)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", a.Kind(), err)
	}
	return string(a.Kind()) + " " + string(data), nil
}

// Decode parses one line produced by Encode.
func Decode(line string) (Action, error) {
	line = strings.TrimSpace(line)
	kind, payload, ok := strings.Cut(line, " ")
	if !ok || !strings.HasPrefix(payload, "{") {
		return nil, fmt.Errorf("%w: %q", ErrMalformedLine, line)
	}
	decode, ok := decoders[Kind(kind)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	a, err := decode([]byte(payload))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}
	if a.GameName() == "" {
		return nil, fmt.Errorf("decode %s: %w", kind, ErrGameRequired)
	}
	return a, nil
}

// Equal reports whether two actions encode to the same line.
func Equal(a, b Action) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	la, err1 := Encode(a)
	lb, err2 := Encode(b)
	return err1 == nil && err2 == nil && la == lb
}

// WriteLines writes one encoded action per line.
func WriteLines(w io.Writer, actions []Action) error {
	bw := bufio.NewWriter(w)
	for _, a := range actions {
		line, err := Encode(a)
		if err != nil {
			return err
		}
		if _, err := bw.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadLines decodes every non-blank line of r.
func ReadLines(r io.Reader) ([]Action, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	var out []Action
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		a, err := Decode(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		out = append(out, a)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
