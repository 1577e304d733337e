package snapshot

// Addr returns the block's unique address, deriving it from type and name
// when the Address field is empty.
//
// Derived forms follow the usual Terraform addressing scheme:
//
//	resource  →  <resource_type>.<name>
//	data      →  data.<resource_type>.<name>
//	module    →  module.<name>
//	output    →  output.<name>
//	variable  →  var.<name>
//	provider  →  provider.<name>
//
// Locals, terraform blocks, and unknown types have no natural name and fall
// back to <block_type>.<file_name>.
func (b *Block) Addr() string {
	if b.Address != "" {
		return b.Address
	}
	switch b.BlockType {
	case BlockResource:
		return b.ResourceType + "." + b.Name
	case BlockData:
		return "data." + b.ResourceType + "." + b.Name
	case BlockModule:
		return "module." + b.Name
	case BlockOutput:
		return "output." + b.Name
	case BlockVariable:
		return "var." + b.Name
	case BlockProvider:
		return "provider." + b.Name
	default:
		return b.BlockType + "." + b.FileName
	}
}
