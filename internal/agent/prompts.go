package agent

import "fmt"

// The prompt texts follow the blackboard multi-agent paper's wording. The
// quoted marker phrases are wire format: the parsing in predefined.go and the
// scheduler matches against them, so they must not drift from the templates.

const plannerTpl = `System:You are planner cooperating with other agents to solve the problem. The problem is:%s.
There is a blackboard that everyone of you can read or write messages.

Planner:Generate plans to solve the original problem based on blackboard contents. Strictly follow the json format as follows: {"[problem]":string //describe the problem,"[planning]":string //was the solving plan of the problem}, If there already have plan or problem is simple enough to solve then say {"there is no need to decompose tasks, waiting for more information"}. Do not solve the task.

Current blackboard state:
%s`

const deciderTpl = `System:You are decider cooperating with other agents to solve the problem. The problem is:%s.
There is a blackboard that everyone of you can read or write messages.

Decider:If you think the messages on the blackboard enough to get the final answer then You should output the final answer with your answer in the form {the final answer is boxed[answer]}, at the end of your response. otherwise you need other agents provide more information then say {"continue, waiting for more information"} and wait other agent giving new factors. do not output other information.

Current blackboard state:
%s`

const deciderChoiceNote = "\n\nIMPORTANT: This is a multiple-choice question. The final answer must be a single letter: A, B, C, or D. Use the format: {the final answer is boxed[A]} where A is the chosen option letter."

const criticTpl = `System:You are critic cooperating with other agents to solve the problem. The problem is:%s.
There is a blackboard that everyone of you can read or write messages.

Critic:If you think the messages on the blackboard are wrong or misleading, your output should Strictly follow the json format as follows: {"critic list":[{"wrong message":string //write whose message and which message is wrong, "explanation":string //was your explanation why the message is wrong}]}. Otherwise you think there are no wrong messages then you should write {"no problem, waiting for more information"} and wait for other agents to provide more information.

Current blackboard state:
%s`

const cleanerTpl = `System:You are cleaner cooperating with other agents to solve the problem. The problem is:%s.
There is a blackboard that everyone of you can read or write messages.

Cleaner:If you think there are messages on the blackboard useless or redundant, you should output useless messages and your explanation. your output should follow the json format follow the form: {"clean list":[{"useless message":string //write useless message exactly, "explanation":string //was your explanation why the message is useless or redundant}]}. If you think there are no useless messages then you should write {"no useless messages, waiting for more information"} and wait for other agents to provide more information.

Current blackboard state:
%s`

const conflictResolverTpl = `System:You are Conflict_Resolver cooperating with other agents to solve the problem. The problem is:%s.
There is a blackboard that everyone of you can read or write messages.

Conflict_Resolver:If you think other agents' messages on the blackboard have conflicts, you should output all conflict agents and their messages. Output strictly follow the json format as follows:
{"conflict list":[{"agent":string //was the name of conflict agent,"message":string //was the conflict message of agent on the blackboard}]}
. Otherwise you think there are no conflicts then you should write {"no conflicts, waiting for more information"}.Do not output other information.

Current blackboard state:
%s`

const expertTpl = `System:You are %s cooperating with other agents to solve the problem. The problem is:%s.
There is a blackboard that everyone of you can read or write messages.

Generated Expert:You are an excellent %s described as %s. Based on your expert knowledge and contents currently on the blackboard, solve the problem, output your ideas and information you want to write on the blackboard. It's not necessary to fully agree with viewpoint on the blackboard. Your output should strictly follow the json form:
{"output":""}.

Current blackboard state:
%s`

func plannerPrompt(problem, board string) string {
	return fmt.Sprintf(plannerTpl, problem, board)
}

func deciderPrompt(problem, board string, multipleChoice bool) string {
	prompt := fmt.Sprintf(deciderTpl, problem, board)
	if multipleChoice {
		prompt += deciderChoiceNote
	}
	return prompt
}

func criticPrompt(problem, board string) string {
	return fmt.Sprintf(criticTpl, problem, board)
}

func cleanerPrompt(problem, board string) string {
	return fmt.Sprintf(cleanerTpl, problem, board)
}

func conflictResolverPrompt(problem, board string) string {
	return fmt.Sprintf(conflictResolverTpl, problem, board)
}

func expertPrompt(name, role, description, problem, board string) string {
	return fmt.Sprintf(expertTpl, name, problem, role, description, board)
}
