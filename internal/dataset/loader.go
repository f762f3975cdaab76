// Package dataset loads benchmark task files and scores predictions against
// ground truth.
package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Task is one benchmark problem, optionally with its ground-truth answer.
type Task struct {
	Question string `json:"question"`
	Answer   string `json:"answer,omitempty"`
	Dataset  string `json:"dataset,omitempty"`
	TaskID   string `json:"task_id,omitempty"`
}

// rawTask tolerates the type drift found in real task files: answers and ids
// show up as strings, numbers or null depending on who exported the file.
type rawTask struct {
	Question string          `json:"question"`
	Answer   json.RawMessage `json:"answer"`
	Dataset  string          `json:"dataset"`
	TaskID   json.RawMessage `json:"task_id"`
}

var wrapperKeys = []string{"tasks", "data", "questions", "items"}

// Load reads a task file. The file may be a bare JSON array of tasks, an
// object wrapping that array under one of the usual keys (tasks, data,
// questions, items), or a single task object. Tasks without an id get a
// sequential one; tasks without a question are rejected.
func Load(path string) ([]Task, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}

	list, err := taskList(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse dataset %s: %w", path, err)
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("dataset %s contains no tasks", path)
	}

	tasks := make([]Task, 0, len(list))
	for i, rt := range list {
		task := Task{
			Question: strings.TrimSpace(rt.Question),
			Answer:   flexString(rt.Answer),
			Dataset:  rt.Dataset,
			TaskID:   flexString(rt.TaskID),
		}
		if task.Question == "" {
			return nil, fmt.Errorf("task %d in %s has no question", i+1, path)
		}
		if task.TaskID == "" {
			task.TaskID = fmt.Sprintf("task_%d", i+1)
		}
		if task.Dataset == "" {
			task.Dataset = "unknown"
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func taskList(raw []byte) ([]rawTask, error) {
	var list []rawTask
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, fmt.Errorf("neither a task array nor an object: %w", err)
	}
	for _, key := range wrapperKeys {
		if inner, ok := wrapper[key]; ok {
			if err := json.Unmarshal(inner, &list); err != nil {
				return nil, fmt.Errorf("key %q does not hold a task array: %w", key, err)
			}
			return list, nil
		}
	}

	// An object without a wrapper key is treated as a single task.
	var single rawTask
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, err
	}
	return []rawTask{single}, nil
}

// flexString renders a raw JSON value as a string: quoted strings are
// unquoted, numbers and bools kept verbatim, null becomes empty.
func flexString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	v := strings.TrimSpace(string(raw))
	if v == "null" {
		return ""
	}
	return v
}

var numberSeqRe = regexp.MustCompile(`\d+\.?\d*`)

// Evaluate scores a predicted answer against the ground truth: normalized
// exact match, then ground-truth containment, then comparing the last number
// appearing in each. Approximate by construction, which is fine for
// benchmark accuracy counting.
func Evaluate(predicted, groundTruth string) bool {
	pred := strings.ToLower(strings.TrimSpace(predicted))
	gt := strings.ToLower(strings.TrimSpace(groundTruth))
	if gt == "" {
		return false
	}

	if pred == gt {
		return true
	}
	if strings.Contains(pred, gt) {
		return true
	}

	predNums := numberSeqRe.FindAllString(pred, -1)
	gtNums := numberSeqRe.FindAllString(gt, -1)
	if len(predNums) > 0 && len(gtNums) > 0 {
		return predNums[len(predNums)-1] == gtNums[len(gtNums)-1]
	}
	return false
}
