package driver

const (
	DeleteCanonicalGraphQuery = `
		MATCH (n:CanonicalFlowNode {collection_id: $collection_id})
		DETACH DELETE n
	`

	CreateCanonicalNodesQuery = `
		UNWIND $nodes AS row
		CREATE (n:CanonicalFlowNode {
			collection_id: $collection_id,
			id: row.id,
			ordinal: row.ordinal,
			label: row.label,
			type: row.type,
			icon: row.icon,
			content: row.content,
			support_count: row.support_count,
			confidence: row.confidence
		})
	`

	CreateCanonicalEdgesQuery = `
		UNWIND $edges AS row
		MATCH (a:CanonicalFlowNode {collection_id: $collection_id, id: row.from_node_id})
		MATCH (b:CanonicalFlowNode {collection_id: $collection_id, id: row.to_node_id})
		CREATE (a)-[:TRANSITIONS_TO {
			collection_id: $collection_id,
			ordinal: row.ordinal,
			reason: row.reason,
			support_count: row.support_count,
			transition_rate: row.transition_rate
		}]->(b)
	`

	GetCanonicalNodesQuery = `
		MATCH (n:CanonicalFlowNode {collection_id: $collection_id})
		RETURN n.id AS id, n.label AS label, n.type AS type, n.icon AS icon,
			n.content AS content, n.support_count AS support_count, n.confidence AS confidence
		ORDER BY n.ordinal ASC
	`

	GetCanonicalEdgesQuery = `
		MATCH (a:CanonicalFlowNode {collection_id: $collection_id})-[e:TRANSITIONS_TO]->(b:CanonicalFlowNode)
		RETURN a.id AS from_node_id, b.id AS to_node_id, e.reason AS reason,
			e.support_count AS support_count, e.transition_rate AS transition_rate
		ORDER BY e.ordinal ASC
	`

	CountCanonicalNodesQuery = `
		MATCH (n:CanonicalFlowNode {collection_id: $collection_id})
		RETURN count(n) AS count
	`

	DeleteAlignmentsQuery = `
		MATCH (a:PromptFlowAlignment {project_id: $project_id, collection_id: $collection_id})
		DELETE a
	`

	CreateAlignmentsQuery = `
		UNWIND $rows AS row
		CREATE (a:PromptFlowAlignment {
			id: row.id,
			project_id: $project_id,
			collection_id: $collection_id,
			prompt_node_id: row.prompt_node_id,
			canonical_node_id: row.canonical_node_id,
			score: row.score,
			reason: row.reason,
			created_at: row.created_at
		})
	`

	GetAlignmentsQuery = `
		MATCH (a:PromptFlowAlignment {project_id: $project_id, collection_id: $collection_id})
		RETURN a.id AS id, a.prompt_node_id AS prompt_node_id, a.canonical_node_id AS canonical_node_id,
			a.score AS score, a.reason AS reason, a.created_at AS created_at
		ORDER BY a.score DESC, a.prompt_node_id ASC
	`
)
