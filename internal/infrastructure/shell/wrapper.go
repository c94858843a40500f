package shell

import "github.com/danielhostetler/baishify/internal/domain"

// WrapperBlock returns the canonical sentinel-delimited rc block for the
// shell. The wrapper runs the real binary with --output-file, then prints the
// accepted command, pushes it into shell history and evals it; execution is
// the parent shell's act, never the binary's. Control subcommands and script
// modes pass straight through.
func WrapperBlock(kind domain.ShellKind) string {
	var historyLine string
	switch kind {
	case domain.ShellZsh:
		historyLine = `print -s -- "$cmd"`
	default:
		historyLine = `history -s "$cmd"`
	}

	body := `b() {
  if [[ ! -t 0 || ! -t 1 ]]; then
    command b "$@"
    return $?
  fi
  for arg in "$@"; do
    case "$arg" in
      setup|init|doctor|history|-h|--help|--json|--plain)
        command b "$@"
        return $?
        ;;
    esac
  done
  local __b_tmp
  __b_tmp="$(mktemp)" || return 1
  command b --output-file "$__b_tmp" "$@" || {
    local __b_status=$?
    rm -f "$__b_tmp"
    return $__b_status
  }
  local cmd
  cmd="$(cat "$__b_tmp")"
  rm -f "$__b_tmp"
  [[ -z "$cmd" ]] && return 1
  printf '%s\n' "$cmd"
  ` + historyLine + `
  eval "$cmd"
}`

	return beginMarker + "\n" + body + "\n" + endMarker + "\n"
}
