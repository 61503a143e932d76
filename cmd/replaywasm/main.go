//go:build js && wasm

package main

import (
	"encoding/json"
	"errors"
	"syscall/js"

	"yatzy-lite/replay"
)

const (
	reasonInvalidRequest = "invalid_request"
	reasonInvalidJSON    = "invalid_json"
	reasonInternal       = "internal"
)

type initRequest struct {
	Spec replay.GameSpec `json:"spec"`
}

type initResponse struct {
	OK    bool                    `json:"ok"`
	Tape  *replay.WireReplayTape  `json:"tape,omitempty"`
	Error *replay.WireReplayError `json:"error,omitempty"`
}

type scoreRequest struct {
	Faces []int `json:"faces"`
}

type scoreResponse struct {
	OK     bool                    `json:"ok"`
	Scores map[string]int          `json:"scores,omitempty"`
	Error  *replay.WireReplayError `json:"error,omitempty"`
}

func main() {
	js.Global().Set("__replayInit", js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) < 1 {
			return mustJSON(initResponse{Error: failure(reasonInvalidRequest, "missing request payload")})
		}
		return mustJSON(handleInit(args[0].String()))
	}))
	js.Global().Set("__scoreDice", js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) < 1 {
			return mustJSON(scoreResponse{Error: failure(reasonInvalidRequest, "missing request payload")})
		}
		return mustJSON(handleScore(args[0].String()))
	}))

	select {}
}

func handleInit(raw string) initResponse {
	var req initRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		return initResponse{Error: failure(reasonInvalidJSON, err.Error())}
	}
	tape, err := replay.GenerateReplayTape(req.Spec)
	if err != nil {
		return initResponse{Error: wireError(err)}
	}
	return initResponse{OK: true, Tape: replay.ToWireReplayTape(tape)}
}

func handleScore(raw string) scoreResponse {
	var req scoreRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		return scoreResponse{Error: failure(reasonInvalidJSON, err.Error())}
	}
	scores, err := replay.ScoreFaces(req.Faces)
	if err != nil {
		return scoreResponse{Error: wireError(err)}
	}
	return scoreResponse{OK: true, Scores: scores}
}

func wireError(err error) *replay.WireReplayError {
	var replayErr *replay.ReplayError
	if errors.As(err, &replayErr) {
		return replay.ToWireReplayError(replayErr)
	}
	return failure(reasonInternal, err.Error())
}

func failure(reason, msg string) *replay.WireReplayError {
	return &replay.WireReplayError{Reason: reason, Message: msg}
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		b, _ = json.Marshal(initResponse{Error: failure(reasonInternal, err.Error())})
	}
	return string(b)
}
