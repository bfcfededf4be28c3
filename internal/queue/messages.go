package queue

// IngestDocumentMsg asks the worker to extract, chunk, index and graph a
// stored document.
type IngestDocumentMsg struct {
	Message    string `json:"message"`
	DocumentID string `json:"document_id"`
	FileKey    string `json:"file_key"`
	FileName   string `json:"file_name"`
}

// DeleteDocumentMsg asks the worker to remove a document from the vector
// index, the knowledge graph and object storage.
type DeleteDocumentMsg struct {
	Message    string `json:"message"`
	DocumentID string `json:"document_id"`
}
