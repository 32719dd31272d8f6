// Package leave 假期申请状态机与年假余额计算
package leave

import "fmt"

// State 申请状态，PEND / APROB / RECH / CANC
type State string

const (
	Pending   State = "PEND"
	Approved  State = "APROB"
	Rejected  State = "RECH"
	Cancelled State = "CANC"
)

// Action 状态流转动作
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionCancel  Action = "cancel"
)

var transitions = map[State][]State{
	Pending:  {Approved, Rejected, Cancelled},
	Approved: {Cancelled},
}

var actionTargets = map[Action]State{
	ActionApprove: Approved,
	ActionReject:  Rejected,
	ActionCancel:  Cancelled,
}

func ParseState(s string) (State, error) {
	switch st := State(s); st {
	case Pending, Approved, Rejected, Cancelled:
		return st, nil
	}
	return "", fmt.Errorf("unknown state %q", s)
}

func (s State) Terminal() bool {
	return len(transitions[s]) == 0
}

// CanTransition 是否允许 from -> to
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Target 动作对应的目标状态
func (a Action) Target() (State, error) {
	st, ok := actionTargets[a]
	if !ok {
		return "", fmt.Errorf("unknown action %q", a)
	}
	return st, nil
}

// Preconditions 执行动作前允许的当前状态，用作条件更新的 WHERE 条件
func (a Action) Preconditions() []State {
	target, err := a.Target()
	if err != nil {
		return nil
	}

	var from []State
	for _, s := range []State{Pending, Approved, Rejected, Cancelled} {
		if CanTransition(s, target) {
			from = append(from, s)
		}
	}
	return from
}

// Privileged 审批、驳回只能由有权限的角色执行；取消允许本人
func (a Action) Privileged() bool {
	return a == ActionApprove || a == ActionReject
}
