package pathstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/pennsieve/cypherqa/types"
)

// DescriptionPrompt instructs the model to describe one instance path
const DescriptionPrompt = `You are a Neo4j expert specializing in medical datasets and files.

**Your Task:**
Given a Cypher path that starts at the root node and traverses to a specific node, write a concise and specific description of the data point retrievable from that path.

Descriptions must be clear and domain-specific. Use keywords from the Cypher properties, node labels and relationships (e.g. EDF, header, value, type, index). Avoid filler words. The reader is another LLM with no prior knowledge of the graph structure.

**Graph Structure:**
1. ` + "`:Pennsieve`" + ` (root) connects to ` + "`:Dataset`" + ` via the ` + "`:DATASET`" + ` relationship.
2. ` + "`:Dataset`" + ` connects to ` + "`:Directory`" + ` or ` + "`:File`" + ` via the ` + "`:FILES`" + ` relationship.
3. ` + "`:Dataset`" + `, ` + "`:Directory`" + ` and ` + "`:File`" + ` nodes have a ` + "`name`" + ` property used for filtering.
4. ` + "`:File`" + ` nodes connect to ` + "`:Data`" + ` via the ` + "`:DATA`" + ` relationship.
5. ` + "`:Dataset`" + ` nodes have an ` + "`id`" + ` property holding the Pennsieve dataset ID.
6. All nodes below the ` + "`:FILES`" + ` relationships are labeled ` + "`:Data`" + `.
7. Only leaf ` + "`:Data`" + ` nodes carry a ` + "`value`" + ` property.
8. ` + "`:INDEX`" + ` relationships carry an ` + "`index`" + ` property for positional access.
9. ` + "`:Data`" + ` node properties:
   - ` + "`children`" + `: number of child relationships (array elements or object keys).
   - ` + "`type`" + `: ` + "`Array`" + ` or ` + "`Object`" + `.
   - ` + "`value`" + `: present only on leaf nodes.

**Graph Semantics:**
- A key-value pair is an edge (key) pointing to a node (value).
- Arrays use ` + "`:INDEX`" + ` edges with a numeric ` + "`index`" + ` to link to their values.

**Description Guidelines:**
0. The first sentence says what information the path retrieves. The second sentence is a special note on the arrays and objects along the path and their indices or children. The third sentence walks through every node and relationship in order.
1. Include key names (` + "`name`" + ` property), relationship types (` + "`:DATASET`" + `, ` + "`:FILES`" + `, ` + "`:INDEX`" + `), node labels and significant properties (` + "`children`" + `, ` + "`type`" + `, ` + "`value`" + `, ` + "`index`" + `) so queries can be matched accurately.
2. Keep the description to 4-5 sentences. Respond with the description only, no apologies or extra text.
3. Use keywords from the path instead of filler language and do not repeat information.

Example paths and their descriptions:
{
0. path: (:Pennsieve)-[:DATASET]->(:Dataset {name: 'Test Dataset CNT'})-[:FILES]->(:File {name: 'test.edf'})-[:DATA]->(:Data {children: 3.0, type: 'Object'})-[:_header]->(:Data {children: 10.0, type: 'Object'})-[:nbSignals]->(:Data {value: 12.0})
Description: Retrieves the number of signal channels (value: 12.0) from the header of the EDF file test.edf in dataset Test Dataset CNT. Special note: the key :_header returns an Object with 10 key-value pairs, where the :nbSignals key directly retrieves the number of channels. Starting at :Pennsieve, the :DATASET relationship leads to a :Dataset node (name: 'Test Dataset CNT'), then :FILES accesses the :File node (name: 'test.edf'); a :DATA relationship retrieves an Object node (children: 3.0, type: 'Object'), from which the :_header key retrieves an Object node (children: 10.0, type: 'Object') and the :nbSignals key retrieves the leaf node (value: 12.0).

1. path: (:Pennsieve)-[:DATASET]->(:Dataset {name: 'A mathematical model for simulating the neural regulation'})-[:FILES]->(:File {name: 'manifest.json'})-[:DATA]->(:Data {children: 19.0, type: 'Object'})-[:creator]->(:Data {children: 3.0, type: 'Object'})-[:first_name]->(:Data {value: 'Omkar'})
Description: Retrieves the creator's first name ('Omkar') from the manifest.json file in dataset A mathematical model for simulating the neural regulation. Special note: the :Data node of manifest.json is an Object with 19 children; its :creator key returns an Object with 3 children, from which the :first_name key retrieves the leaf value 'Omkar'. Starting at :Pennsieve, the :DATASET relationship leads to a :Dataset node (name: 'A mathematical model for simulating the neural regulation'), then :FILES accesses the :File node (name: 'manifest.json'); a :DATA relationship retrieves an Object node (children: 19.0, type: 'Object'), from which the :creator key accesses an Object node (children: 3.0, type: 'Object') and the :first_name key retrieves the leaf node (value: 'Omkar').

2. path: (:Pennsieve)-[:DATASET]->(:Dataset {name: 'Test Dataset CNT'})-[:FILES]->(:File {name: 'test.edf'})-[:DATA]->(:Data {children: 3.0, type: 'Object'})-[:_rawSignals]->(:Data {children: 12.0, type: 'Array'})-[:INDEX]->(:Data {children: 600.0, type: 'Array'})-[:INDEX]->(:Data {children: 200.0, type: 'Object'})-[:` + "`5`" + `]->(:Data {value: -3112.0})
Description: Retrieves a raw signal measurement (value: -3112.0) from the EDF file test.edf in dataset Test Dataset CNT. Special note: the key :_rawSignals returns an Array with 12 children (indices 0-11); an :INDEX relationship navigates to an inner Array of 600 children and then to an Object with 200 key-value pairs, where numeric index 5 selects the measurement. Starting at :Pennsieve, the :DATASET relationship leads to a :Dataset node (name: 'Test Dataset CNT'), then :FILES accesses the :File node (name: 'test.edf'); a :DATA relationship retrieves an Object node (children: 3.0, type: 'Object'), from which the :_rawSignals key retrieves an Array node (children: 12.0, type: 'Array'); subsequent :INDEX relationships navigate an Array node (children: 600.0, type: 'Array') and an Object node (children: 200.0, type: 'Object') before the numeric index 5 retrieves the leaf node (value: -3112.0).
}

In your output provide only the textual description without any additional context or explanations. Max 4-5 lines.`

// Describer generates a natural-language description for an instance path
type Describer struct {
	chat types.ChatModel
}

// NewDescriber creates a describer backed by a chat model
func NewDescriber(chat types.ChatModel) *Describer {
	return &Describer{chat: chat}
}

// Describe returns the description of path
func (d *Describer) Describe(ctx context.Context, path string) (string, error) {
	if d == nil || d.chat == nil {
		return "", fmt.Errorf("no description model configured")
	}

	// the system instructions and the path go out as one user message,
	// reasoning models reject the system role
	content := DescriptionPrompt + "\n\nPath:" + path
	reply, err := d.chat.Chat(ctx, []types.Message{{Role: "user", Content: content}})
	if err != nil {
		return "", fmt.Errorf("failed to describe path: %w", err)
	}

	description := strings.TrimSpace(reply)
	if description == "" {
		return "", fmt.Errorf("empty description returned")
	}
	return description, nil
}
