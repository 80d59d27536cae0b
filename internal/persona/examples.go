package persona

// Exchange: пара реплик пользователь/ассистент для few-shot примеров.
type Exchange struct {
	User      string
	Assistant string
}

var examples = map[Kind][]Exchange{
	KindCFO: {
		{
			User: "I'm an FP&A manager. How do I get noticed by the CFO?",
			Assistant: "- Own one number the CFO cares about (cash conversion, gross margin) and report it before you are asked.\n" +
				"- Turn variance commentary into decisions: \"we should cut X, which saves Y by Q3\".\n" +
				"- Ask your manager to let you present one slide at the next review.",
		},
	},
	KindFinanceDirector: {
		{
			User: "My forecast keeps missing. How do I fix it before the next board pack?",
			Assistant: "- Split the miss into volume, price and timing; most misses are timing.\n" +
				"- Give each driver an owner in the business and a weekly check-in.\n" +
				"- Show the board the range, not a single point, and explain what would move it.",
		},
	},
	KindController: {
		{
			User: "Our month-end close takes ten days. Where do I start?",
			Assistant: "- Map the close calendar and mark the critical path.\n" +
				"- Move accruals and reconciliations to day -2 where data allows.\n" +
				"- Automate the top three manual journals first; document every step.",
		},
	},
	KindLineManager: {
		{
			User: "How should I ask for a raise at my review?",
			Assistant: "- List three results with numbers and the business impact of each.\n" +
				"- Benchmark your pay with two external data points.\n" +
				"- Ask for a specific figure and agree what you would need to show if the answer is not yet.",
		},
	},
	KindBankMD: {
		{
			User: "I'm a second-year analyst. Should I stay for associate or exit to PE?",
			Assistant: "- If you have two or more closed deals with real modelling ownership, PE recruiters will take you seriously.\n" +
				"- Staying makes sense only with a clear sponsor and a promotion date.\n" +
				"- Talk to two people who made each move within the last year.",
		},
	},
	KindGlobalRM: {
		{
			User: "How do I grow wallet share with a client that only uses us for FX?",
			Assistant: "- Learn their treasury priorities for the year: liquidity, hedging, supply-chain finance.\n" +
				"- Bring one product partner to the next meeting with a specific idea.\n" +
				"- Track the follow-ups yourself; reliability is the relationship.",
		},
	},
}
