package action

// Wire names of every action.
const (
	KindJoinGame                      Kind = "JoinGame"
	KindLeaveGame                     Kind = "LeaveGame"
	KindAssignTower                   Kind = "AssignTower"
	KindAssignedAllTowers             Kind = "AssignedAllTowers"
	KindPickedColor                   Kind = "PickedColor"
	KindCreateStartingLegion          Kind = "CreateStartingLegion"
	KindSplitLegion                   Kind = "SplitLegion"
	KindUndoSplit                     Kind = "UndoSplit"
	KindRollMovement                  Kind = "RollMovement"
	KindMoveLegion                    Kind = "MoveLegion"
	KindUndoMoveLegion                Kind = "UndoMoveLegion"
	KindStartFightPhase               Kind = "StartFightPhase"
	KindResolvingEngagement           Kind = "ResolvingEngagement"
	KindRevealLegion                  Kind = "RevealLegion"
	KindFlee                          Kind = "Flee"
	KindDoNotFlee                     Kind = "DoNotFlee"
	KindConcede                       Kind = "Concede"
	KindMakeProposal                  Kind = "MakeProposal"
	KindAcceptProposal                Kind = "AcceptProposal"
	KindRejectProposal                Kind = "RejectProposal"
	KindFight                         Kind = "Fight"
	KindStartMusterPhase              Kind = "StartMusterPhase"
	KindRecruitCreature               Kind = "RecruitCreature"
	KindUndoRecruit                   Kind = "UndoRecruit"
	KindDoNotReinforce                Kind = "DoNotReinforce"
	KindSummonAngel                   Kind = "SummonAngel"
	KindUnSummon                      Kind = "UnSummon"
	KindDoNotSummon                   Kind = "DoNotSummon"
	KindAcquire                       Kind = "Acquire"
	KindDoNotAcquire                  Kind = "DoNotAcquire"
	KindStartSplitPhase               Kind = "StartSplitPhase"
	KindMoveCreature                  Kind = "MoveCreature"
	KindUndoMoveCreature              Kind = "UndoMoveCreature"
	KindStartManeuverBattlePhase      Kind = "StartManeuverBattlePhase"
	KindStartStrikeBattlePhase        Kind = "StartStrikeBattlePhase"
	KindStrike                        Kind = "Strike"
	KindCarry                         Kind = "Carry"
	KindStartCounterstrikeBattlePhase Kind = "StartCounterstrikeBattlePhase"
	KindStartReinforceBattlePhase     Kind = "StartReinforceBattlePhase"
	KindBattleOver                    Kind = "BattleOver"
	KindEliminatePlayer               Kind = "EliminatePlayer"
	KindGameOver                      Kind = "GameOver"
	KindWithdraw                      Kind = "Withdraw"
	KindPauseAI                       Kind = "PauseAI"
	KindResumeAI                      Kind = "ResumeAI"
)

// JoinGame adds a player to a game that has not started.
type JoinGame struct {
	Header
}

func (JoinGame) Kind() Kind { return KindJoinGame }

// LeaveGame removes a player from a game that has not started.
type LeaveGame struct {
	Header
}

func (LeaveGame) Kind() Kind { return KindLeaveGame }

// AssignTower gives a player a starting tower.
type AssignTower struct {
	Header
	Tower int `json:"tower"`
}

func (AssignTower) Kind() Kind { return KindAssignTower }

// AssignedAllTowers starts the game once every player has a tower.
type AssignedAllTowers struct {
	Header
}

func (AssignedAllTowers) Kind() Kind { return KindAssignedAllTowers }

// PickedColor records a player's color.
type PickedColor struct {
	Header
	Color string `json:"color"`
}

func (PickedColor) Kind() Kind { return KindPickedColor }

// CreateStartingLegion places a player's first legion in their tower.
type CreateStartingLegion struct {
	Header
	Marker        string   `json:"marker"`
	CreatureNames []string `json:"creature_names"`
}

func (CreateStartingLegion) Kind() Kind { return KindCreateStartingLegion }

// SplitLegion moves creatures from a parent legion into a new child.
type SplitLegion struct {
	Header
	ParentMarker        string   `json:"parent_marker"`
	ChildMarker         string   `json:"child_marker"`
	ParentCreatureNames []string `json:"parent_creature_names"`
	ChildCreatureNames  []string `json:"child_creature_names"`
}

func (SplitLegion) Kind() Kind { return KindSplitLegion }

// UndoSplit merges a child legion back into its parent.
type UndoSplit SplitLegion

func (UndoSplit) Kind() Kind { return KindUndoSplit }

// RollMovement starts the move phase, or records a mulligan reroll.
type RollMovement struct {
	Header
	MovementRoll  int `json:"movement_roll"`
	MulligansLeft int `json:"mulligans_left"`
}

func (RollMovement) Kind() Kind { return KindRollMovement }

// MoveLegion moves a legion on the masterboard.
type MoveLegion struct {
	Header
	Marker          string `json:"marker"`
	Hex             int    `json:"hex"`
	EntrySide       int    `json:"entry_side"`
	Teleport        bool   `json:"teleport,omitempty"`
	TeleportingLord string `json:"teleporting_lord,omitempty"`
	PreviousHex     int    `json:"previous_hex"`
}

func (MoveLegion) Kind() Kind { return KindMoveLegion }

// UndoMoveLegion returns a legion to the hex it started the turn in.
type UndoMoveLegion MoveLegion

func (UndoMoveLegion) Kind() Kind { return KindUndoMoveLegion }

// StartFightPhase ends the move phase.
type StartFightPhase struct {
	Header
}

func (StartFightPhase) Kind() Kind { return KindStartFightPhase }

// ResolvingEngagement opens negotiation for the engagement in Hex.
type ResolvingEngagement struct {
	Header
	Hex int `json:"hex"`
}

func (ResolvingEngagement) Kind() Kind { return KindResolvingEngagement }

// RevealLegion shows a legion's contents, usually to the opponent only.
type RevealLegion struct {
	Header
	Marker        string   `json:"marker"`
	CreatureNames []string `json:"creature_names"`
}

func (RevealLegion) Kind() Kind { return KindRevealLegion }

// Flee removes a defending legion before battle at half points.
type Flee struct {
	Header
	Marker      string `json:"marker"`
	EnemyMarker string `json:"enemy_marker"`
	Hex         int    `json:"hex"`
}

func (Flee) Kind() Kind { return KindFlee }

// DoNotFlee declines to flee.
type DoNotFlee Flee

func (DoNotFlee) Kind() Kind { return KindDoNotFlee }

// Concede gives up an engagement, before or during battle.
type Concede Flee

func (Concede) Kind() Kind { return KindConcede }

// MakeProposal offers a negotiated outcome: the surviving creatures of each
// side. An empty list means that legion dies.
type MakeProposal struct {
	Header
	OtherPlayer           string   `json:"other_player"`
	AttackerMarker        string   `json:"attacker_marker"`
	AttackerCreatureNames []string `json:"attacker_creature_names"`
	DefenderMarker        string   `json:"defender_marker"`
	DefenderCreatureNames []string `json:"defender_creature_names"`
	Hex                   int      `json:"hex"`
}

func (MakeProposal) Kind() Kind { return KindMakeProposal }

// AcceptProposal settles an engagement on the proposed terms.
type AcceptProposal MakeProposal

func (AcceptProposal) Kind() Kind { return KindAcceptProposal }

// RejectProposal declines a proposal.
type RejectProposal MakeProposal

func (RejectProposal) Kind() Kind { return KindRejectProposal }

// Fight starts a battle.
type Fight struct {
	Header
	AttackerMarker string `json:"attacker_marker"`
	DefenderMarker string `json:"defender_marker"`
	Hex            int    `json:"hex"`
}

func (Fight) Kind() Kind { return KindFight }

// StartMusterPhase ends the fight phase.
type StartMusterPhase struct {
	Header
}

func (StartMusterPhase) Kind() Kind { return KindStartMusterPhase }

// RecruitCreature adds a creature from the pool to a legion.
type RecruitCreature struct {
	Header
	Marker         string   `json:"marker"`
	CreatureName   string   `json:"creature_name"`
	RecruiterNames []string `json:"recruiter_names"`
}

func (RecruitCreature) Kind() Kind { return KindRecruitCreature }

// UndoRecruit returns a recruit to the pool.
type UndoRecruit RecruitCreature

func (UndoRecruit) Kind() Kind { return KindUndoRecruit }

// DoNotReinforce declines a pending reinforcement.
type DoNotReinforce struct {
	Header
	Marker string `json:"marker"`
}

func (DoNotReinforce) Kind() Kind { return KindDoNotReinforce }

// SummonAngel moves a summonable lord from a donor legion to the attacker.
type SummonAngel struct {
	Header
	Marker       string `json:"marker"`
	DonorMarker  string `json:"donor_marker"`
	CreatureName string `json:"creature_name"`
}

func (SummonAngel) Kind() Kind { return KindSummonAngel }

// UnSummon returns a summoned lord to its donor.
type UnSummon SummonAngel

func (UnSummon) Kind() Kind { return KindUnSummon }

// DoNotSummon declines a pending summon.
type DoNotSummon struct {
	Header
	Marker string `json:"marker"`
}

func (DoNotSummon) Kind() Kind { return KindDoNotSummon }

// Acquire adds earned Angels and Archangels to a legion.
type Acquire struct {
	Header
	Marker        string   `json:"marker"`
	CreatureNames []string `json:"creature_names"`
}

func (Acquire) Kind() Kind { return KindAcquire }

// DoNotAcquire declines pending Angels and Archangels.
type DoNotAcquire struct {
	Header
	Marker string `json:"marker"`
}

func (DoNotAcquire) Kind() Kind { return KindDoNotAcquire }

// StartSplitPhase begins Player's turn Turn.
type StartSplitPhase struct {
	Header
	Turn int `json:"turn"`
}

func (StartSplitPhase) Kind() Kind { return KindStartSplitPhase }

// MoveCreature moves a creature on the battle map.
type MoveCreature struct {
	Header
	CreatureName string `json:"creature_name"`
	OldHex       string `json:"old_hex"`
	NewHex       string `json:"new_hex"`
}

func (MoveCreature) Kind() Kind { return KindMoveCreature }

// UndoMoveCreature returns a creature to OldHex.
type UndoMoveCreature MoveCreature

func (UndoMoveCreature) Kind() Kind { return KindUndoMoveCreature }

// StartManeuverBattlePhase begins the active legion's maneuver.
type StartManeuverBattlePhase struct {
	Header
}

func (StartManeuverBattlePhase) Kind() Kind { return KindStartManeuverBattlePhase }

// StartStrikeBattlePhase applies drift damage and begins the strike phase.
type StartStrikeBattlePhase struct {
	Header
}

func (StartStrikeBattlePhase) Kind() Kind { return KindStartStrikeBattlePhase }

// Strike records one resolved strike with its dice.
type Strike struct {
	Header
	StrikerName  string `json:"striker_name"`
	StrikerHex   string `json:"striker_hex"`
	TargetName   string `json:"target_name"`
	TargetHex    string `json:"target_hex"`
	NumDice      int    `json:"num_dice"`
	StrikeNumber int    `json:"strike_number"`
	Rolls        []int  `json:"rolls"`
	Hits         int    `json:"hits"`
	Carries      int    `json:"carries"`
}

func (Strike) Kind() Kind { return KindStrike }

// Carry applies carried hits from the pending strike to another target.
type Carry struct {
	Header
	CarryTargetName string `json:"carry_target_name"`
	CarryTargetHex  string `json:"carry_target_hex"`
	Carries         int    `json:"carries"`
	CarriesLeft     int    `json:"carries_left"`
}

func (Carry) Kind() Kind { return KindCarry }

// StartCounterstrikeBattlePhase hands the strike to the other legion.
type StartCounterstrikeBattlePhase struct {
	Header
}

func (StartCounterstrikeBattlePhase) Kind() Kind { return KindStartCounterstrikeBattlePhase }

// StartReinforceBattlePhase begins a new battle turn for the active legion.
type StartReinforceBattlePhase struct {
	Header
	BattleTurn int `json:"battle_turn"`
}

func (StartReinforceBattlePhase) Kind() Kind { return KindStartReinforceBattlePhase }

// BattleOver ends the battle in Hex.
type BattleOver struct {
	Header
	WinnerMarker string `json:"winner_marker"`
	LoserMarker  string `json:"loser_marker"`
	TimeLoss     bool   `json:"time_loss,omitempty"`
	Hex          int    `json:"hex"`
	BattleTurn   int    `json:"battle_turn"`
}

func (BattleOver) Kind() Kind { return KindBattleOver }

// EliminatePlayer removes a dead player's remaining legions. Player is the
// loser; WinnerPlayer, if any, collects the points and markers.
type EliminatePlayer struct {
	Header
	WinnerPlayer string `json:"winner_player,omitempty"`
}

func (EliminatePlayer) Kind() Kind { return KindEliminatePlayer }

// GameOver ends the game. No winners means a draw.
type GameOver struct {
	Header
	Winners []string `json:"winners"`
}

func (GameOver) Kind() Kind { return KindGameOver }

// Withdraw kills a player who leaves a running game.
type Withdraw struct {
	Header
}

func (Withdraw) Kind() Kind { return KindWithdraw }

// PauseAI marks an AI player as paused. It has no effect on game state.
type PauseAI struct {
	Header
}

func (PauseAI) Kind() Kind { return KindPauseAI }

// ResumeAI marks an AI player as running again.
type ResumeAI struct {
	Header
}

func (ResumeAI) Kind() Kind { return KindResumeAI }
